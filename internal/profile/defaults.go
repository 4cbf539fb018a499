package profile

// Built-in profiles used when no profile store exists on disk.

// terminalButton describes one default terminal-profile button.
type terminalButton struct {
	label  string
	color  string
	bright string
	action string
}

// The default terminal layout: top row 0-4, bottom row 5-9. Actions are
// custom names resolved by the input handler.
var terminalButtons = [10]terminalButton{
	{"ACCEPT", "#2f9e44", "#51cf66", "accept"},
	{"REJECT", "#c92a2a", "#ff6b6b", "reject"},
	{"STOP", "#c92a2a", "#ff6b6b", "stop"},
	{"RETRY", "#495057", "#adb5bd", "retry"},
	{"REWIND", "#1864ab", "#4dabf7", "rewind"},
	{"TRUST", "#2f9e44", "#51cf66", "trust"},
	{"TAB", "#1864ab", "#4dabf7", "tab"},
	{"MIC", "#862e9c", "#cc5de8", "mic"},
	{"ENTER", "#1864ab", "#4dabf7", "enter"},
	{"CLEAR", "#495057", "#adb5bd", "clear"},
}

// chatButton describes one default chat-profile emoji button.
type chatButton struct {
	label     string
	shortcode string
	color     string
	bright    string
}

var chatButtons = [10]chatButton{
	{"👍", ":+1:", "#ffc832", "#ffdc64"},
	{"👎", ":-1:", "#646478", "#828296"},
	{"✅", ":white_check_mark:", "#2f9e44", "#51cf66"},
	{"👀", ":eyes:", "#862e9c", "#cc5de8"},
	{"🎉", ":tada:", "#dc64b4", "#ff82d2"},
	{"❤️", ":heart:", "#c92a2a", "#ff6b6b"},
	{"😂", ":joy:", "#ffc832", "#ffdc64"},
	{"🔥", ":fire:", "#e8590c", "#ffb450"},
	{"💯", ":100:", "#c92a2a", "#ff6b6b"},
	{"🙏", ":pray:", "#1864ab", "#4dabf7"},
}

// Defaults returns the built-in profile set: a wildcard terminal profile and
// a chat profile for messaging apps.
func Defaults() []Profile {
	terminal := Profile{
		Name:      "terminal",
		MatchApps: []string{"*"},
	}
	for i, b := range terminalButtons {
		terminal.Buttons = append(terminal.Buttons, Button{
			Position:    i,
			Label:       b.label,
			Color:       b.color,
			BrightColor: b.bright,
			Action:      Action{Kind: ActionCustom, Value: b.action},
		})
	}

	chat := Profile{
		Name:      "chat",
		MatchApps: []string{"Slack", "Discord"},
	}
	for i, b := range chatButtons {
		chat.Buttons = append(chat.Buttons, Button{
			Position:    i,
			Label:       b.label,
			Color:       b.color,
			BrightColor: b.bright,
			Action:      Action{Kind: ActionEmoji, Value: b.shortcode},
		})
	}

	return []Profile{terminal, chat}
}
