package effects

import "strings"

// Companion module ids as reported by the host
const (
	ModuleDAE               = "dae"
	ModuleMidiQOL           = "midi-qol"
	ModuleConvenientEffects = "dfreds-convenient-effects"
	ModuleMagicItems        = "magicitems"
	ModuleVision5e          = "vision-5e"
	ModuleChrisPremades     = "chris-premades"
)

// Modules is the companion-module availability snapshot for one run.
// It is computed once by the orchestrator and never changes during the run.
type Modules struct {
	DAE               bool
	MidiQOL           bool
	ConvenientEffects bool
	MagicItems        bool
	Vision5e          bool
	ChrisPremades     bool
	// Configured is set when the automation macros could be set up for this run
	Configured bool
}

// Core reports whether the core automation capability is present.
// Without it synthesis does nothing.
func (m Modules) Core() bool {
	return m.DAE && m.MidiQOL
}

// MacroStatus reports whether status changes should go through the convenient
// effects macro rather than the plain status key.
func (m Modules) MacroStatus() bool {
	return m.ConvenientEffects
}

// Premades reports whether premade item effects should be applied
func (m Modules) Premades() bool {
	return m.ChrisPremades
}

// DetectModules builds the snapshot from the ids of the installed modules
func DetectModules(installed []string) Modules {
	var m Modules
	for _, id := range installed {
		switch strings.ToLower(strings.TrimSpace(id)) {
		case ModuleDAE:
			m.DAE = true
		case ModuleMidiQOL:
			m.MidiQOL = true
		case ModuleConvenientEffects:
			m.ConvenientEffects = true
		case ModuleMagicItems:
			m.MagicItems = true
		case ModuleVision5e:
			m.Vision5e = true
		case ModuleChrisPremades:
			m.ChrisPremades = true
		}
	}
	m.Configured = m.Core()
	return m
}
