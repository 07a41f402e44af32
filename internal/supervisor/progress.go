package supervisor

import "strings"

// Milestone maps a known log phrase to an advisory progress position. The
// mapping is cosmetic only: it drives the progress display and never
// affects pipeline control flow.
type Milestone struct {
	Phrase  string // matched case-insensitively as a substring
	Percent int
	Label   string
}

// Milestones, in pipeline order. Matching stops at the first hit per line.
var Milestones = []Milestone{
	{"starting schedule capture", 20, "Démarrage du processus"},
	{"configuration validated", 25, "Configuration validée"},
	{"browser started", 30, "Navigateur lancé"},
	{"connecting to portal", 35, "Connexion au portail"},
	{"login successful", 45, "Connexion réussie"},
	{"navigating to schedule", 50, "Accès à l'emploi du temps"},
	{"navigation successful", 60, "Navigation terminée"},
	{"generating schedule pdf", 70, "Génération du PDF en cours"},
	{"pdf captured", 85, "PDF capturé"},
	{"schedule pdf generated", 95, "Génération terminée"},
	{"schedule capture completed", 100, "Processus terminé"},
}

// DetectMilestone scans a log line for a known milestone phrase.
func DetectMilestone(line string) (Milestone, bool) {
	lower := strings.ToLower(line)
	for _, m := range Milestones {
		if strings.Contains(lower, m.Phrase) {
			return m, true
		}
	}
	return Milestone{}, false
}
