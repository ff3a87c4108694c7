package controller

import (
	"strconv"
	"strings"
)

// Command is a main menu choice. Values match the numbers typed at the prompt.
type Command int

const (
	CommandPlay Command = iota + 1
	CommandPlayAll
	CommandPause
	CommandResume
	CommandStop
	CommandShowList
	CommandChangePlaylist
	CommandExit
	CommandHistory
	CommandMostPlayed
)

var commandNames = map[Command]string{
	CommandPlay:           "play",
	CommandPlayAll:        "play_all",
	CommandPause:          "pause",
	CommandResume:         "resume",
	CommandStop:           "stop",
	CommandShowList:       "show_list",
	CommandChangePlaylist: "change_playlist",
	CommandExit:           "exit",
	CommandHistory:        "history",
	CommandMostPlayed:     "most_played",
}

var commandLabels = []struct {
	cmd   Command
	label string
}{
	{CommandPlay, "Play a song"},
	{CommandPlayAll, "Play all songs"},
	{CommandPause, "Pause"},
	{CommandResume, "Resume"},
	{CommandStop, "Stop"},
	{CommandShowList, "Show song list"},
	{CommandChangePlaylist, "Change playlist"},
	{CommandExit, "Exit"},
	{CommandHistory, "Show play history"},
	{CommandMostPlayed, "Show most played"},
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCommand parses a menu line. ok is false when the line is not a number;
// a number outside the menu parses but is not Valid.
func ParseCommand(line string) (cmd Command, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, false
	}
	return Command(n), true
}

func (c Command) Valid() bool {
	_, ok := commandNames[c]
	return ok
}

// PlayAllControl is a choice in the play-all control menu.
type PlayAllControl int

const (
	ControlPause PlayAllControl = iota + 1
	ControlResume
	ControlStop
)

func ParsePlayAllControl(line string) (PlayAllControl, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, false
	}
	return PlayAllControl(n), true
}
