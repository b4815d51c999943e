package memory

import (
	"context"

	"trivia-race-service/internal/domain"
)

// DefaultBankID names the built-in question bank.
const DefaultBankID = "default"

// StaticBankLoader serves question banks from an in-memory map (useful for tests/demos).
type StaticBankLoader struct {
	banks map[string]domain.QuestionBank
}

func NewStaticBankLoader(banks map[string]domain.QuestionBank) *StaticBankLoader {
	return &StaticBankLoader{banks: banks}
}

func (l *StaticBankLoader) LoadBank(_ context.Context, bankID string) (domain.QuestionBank, error) {
	if bank, ok := l.banks[bankID]; ok {
		return bank, nil
	}
	return domain.QuestionBank{}, domain.ErrBankNotFound
}

// DefaultBank is the eight-question bank used when no other source is configured.
func DefaultBank() domain.QuestionBank {
	return domain.QuestionBank{
		ID: DefaultBankID,
		Questions: []domain.Question{
			{
				Text:          "According to Russell and Norvig (2021), what is the central purpose of artificial intelligence?",
				Options:       []string{"Building agents that act rationally", "Producing digital entertainment", "Fully replacing humans", "Creating machines that imitate human emotions"},
				CorrectOption: "Building agents that act rationally",
			},
			{
				Text:          "According to Wiener (2019), cybernetics mainly studies:",
				Options:       []string{"The history of computing", "Video game programming", "The digital economy", "Control mechanisms in natural and artificial systems"},
				CorrectOption: "Control mechanisms in natural and artificial systems",
			},
			{
				Text:          "Which is a risk of autonomous cybernetic systems?",
				Options:       []string{"Increased human creativity", "Lower operating costs", "Cascading failures and unauthorized access", "Better medical diagnoses"},
				CorrectOption: "Cascading failures and unauthorized access",
			},
			{
				Text:          "Brynjolfsson and McAfee (2016) note that labor automation mainly drives:",
				Options:       []string{"The disappearance of digital communication", "Gains in efficiency and productivity", "The removal of ethics at work", "Lower digital literacy"},
				CorrectOption: "Gains in efficiency and productivity",
			},
			{
				Text:          "A critical ethical challenge in artificial intelligence is:",
				Options:       []string{"Lack of creativity in algorithms", "Missing advanced hardware", "Algorithmic bias in decision making", "Scarcity of available data"},
				CorrectOption: "Algorithmic bias in decision making",
			},
			{
				Text:          "According to Jobin, Ienca and Vayena (2019), international ethics frameworks agree on the importance of:",
				Options:       []string{"Innovation, speed and competitiveness", "Transparency, justice and responsibility", "Exclusivity, privacy and profit", "Entertainment and design"},
				CorrectOption: "Transparency, justice and responsibility",
			},
			{
				Text:          "Castells (2013) states that networked communication is the space where we build:",
				Options:       []string{"Business marketing strategies", "Interactive online games", "Power relations, identity and social participation", "Digital entertainment programs"},
				CorrectOption: "Power relations, identity and social participation",
			},
			{
				Text:          "Tufekci (2015) warns that social media algorithms tend to prioritize:",
				Options:       []string{"Verified scientific information", "Official government news", "Academic content", "Content that triggers intense emotional responses"},
				CorrectOption: "Content that triggers intense emotional responses",
			},
		},
	}
}
