package conversation

import (
	"github.com/wolfman30/realestate-concierge/internal/i18n"
	"github.com/wolfman30/realestate-concierge/internal/session"
)

type command int

const (
	cmdNone command = iota
	cmdRestart
	cmdChangeLanguage
	cmdHelp
	cmdEnd
)

func (c command) String() string {
	switch c {
	case cmdRestart:
		return "restart"
	case cmdChangeLanguage:
		return "change_language"
	case cmdHelp:
		return "help"
	case cmdEnd:
		return "end"
	}
	return "none"
}

// commandPhrases are matched against the whole normalized message.
var commandPhrases = map[string]command{
	"hi":         cmdRestart,
	"hello":      cmdRestart,
	"hey":        cmdRestart,
	"hii":        cmdRestart,
	"namaste":    cmdRestart,
	"namaskar":   cmdRestart,
	"restart":    cmdRestart,
	"start over": cmdRestart,
	"new search": cmdRestart,
	"नमस्कार":    cmdRestart,
	"नमस्ते":     cmdRestart,
	"पुन्हा सुरू करा": cmdRestart,
	"नवीन शोध":        cmdRestart,
	"change language": cmdChangeLanguage,
	"language":        cmdChangeLanguage,
	"भाषा":            cmdChangeLanguage,
	"भाषा बदला":       cmdChangeLanguage,
	"help":            cmdHelp,
	"menu help":       cmdHelp,
	"मदत":             cmdHelp,
	"end":             cmdEnd,
	"bye":             cmdEnd,
	"exit":            cmdEnd,
	"समाप्त":          cmdEnd,
	"बाय":             cmdEnd,
}

func matchCommand(text string) command {
	if cmd, ok := commandPhrases[commandText(text)]; ok {
		return cmd
	}
	return cmdNone
}

var helpKeys = map[session.State]i18n.Key{
	session.StateLanguageSelection: i18n.KeyHelpLanguage,
	session.StateWelcome:           i18n.KeyHelpWelcome,
	session.StateInterestSelection: i18n.KeyHelpInterest,
	session.StatePropertyMatch:     i18n.KeyHelpProperty,
	session.StateScheduleVisit:     i18n.KeyHelpSchedule,
	session.StateCollectInfo:       i18n.KeyHelpCollect,
	session.StateCompleted:         i18n.KeyHelpCompleted,
}

// handleCommand applies a global interrupt. ok is false when cmd is cmdNone.
func (m *Machine) handleCommand(s *session.Session, cmd command) (Outcome, bool) {
	switch cmd {
	case cmdRestart:
		s.ResetFlow()
		return Outcome{Reply: m.t(s, i18n.KeyWelcome, nil)}, true
	case cmdChangeLanguage:
		s.Preferences = session.Preferences{}
		s.Phase = session.LanguageSelection{}
		return Outcome{Reply: m.t(s, i18n.KeyLanguageMenu, nil)}, true
	case cmdHelp:
		return Outcome{Reply: m.t(s, helpKeys[s.State()], nil)}, true
	case cmdEnd:
		if p, ok := s.Phase.(session.Completed); ok {
			p.DocumentSelection = false
			p.ViewingDetails = false
			s.Phase = p
		} else {
			s.ResetFlow()
		}
		return Outcome{Reply: m.t(s, i18n.KeyGoodbye, nil)}, true
	}
	return Outcome{}, false
}
