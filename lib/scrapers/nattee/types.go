package nattee

import "time"

// Language is one of the grader's fixed set of judge languages. The
// set is enumerated by hand and checked by direct membership: a value
// outside it is an extraction error so that the catalog below is
// forced to stay in sync with the platform.
type Language string

const (
	LangC          Language = "C"
	LangCpp        Language = "C++"
	LangPascal     Language = "Pascal"
	LangJava       Language = "Java"
	LangRuby       Language = "Ruby"
	LangPython     Language = "Python"
	LangHaskell    Language = "Haskell"
	LangDigital    Language = "Digital"
	LangPHP        Language = "PHP"
	LangRust       Language = "Rust"
	LangGo         Language = "Go"
	LangPostgreSQL Language = "PostgreSQL"
)

var recognizedLanguages = map[Language]bool{
	LangC:          true,
	LangCpp:        true,
	LangPascal:     true,
	LangJava:       true,
	LangRuby:       true,
	LangPython:     true,
	LangHaskell:    true,
	LangDigital:    true,
	LangPHP:        true,
	LangRust:       true,
	LangGo:         true,
	LangPostgreSQL: true,
}

func parseLanguage(value string) (Language, error) {
	lang := Language(value)
	if !recognizedLanguages[lang] {
		return "", extractionErr("unrecognized language %q", value)
	}
	return lang, nil
}

// TaskDescriptor is the lightweight task record scraped from the
// landing page listing. It carries just enough to resolve the full
// task later.
type TaskDescriptor struct {
	Name     string `json:"task_name"`
	Nickname string `json:"task_nickname"`
	Id       string `json:"task_id"`
	PdfUrl   string `json:"pdf_url"`
}

// Task is a fully resolved task. Built once by ResolveTask, never
// mutated afterwards.
type Task struct {
	Name       string                       `json:"task_name"`
	Nickname   string                       `json:"task_nickname"`
	Id         string                       `json:"task_id"`
	PdfUrl     string                       `json:"pdf_url"`
	HallOfFame map[Language]HallOfFameEntry `json:"hall_of_fame"`
	TestCases  []TestCase                   `json:"test_cases"`
}

// HallOfFameEntry holds the four notable source-code snapshots for one
// language on one task.
type HallOfFameEntry struct {
	BestRuntime  string `json:"best_runtime"`
	BestMemory   string `json:"best_memory"`
	ShortestCode string `json:"shortest_code"`
	FirstSolver  string `json:"first_solver"`
}

// TestCase pairs one input block with its expected output. Order
// mirrors the test-case page.
type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Author identifies the user behind a submission. Id comes from the
// last path segment of the profile link, Login from the link text.
type Author struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Login string `json:"login"`
}

// Submission is one graded code attempt. Author is nil when the
// platform redacts the user.
type Submission struct {
	Author   *Author   `json:"user"`
	TaskId   string    `json:"task_id"`
	Score    float64   `json:"score"`
	Code     string    `json:"code"`
	Language Language  `json:"language"`
	Runtime  float64   `json:"runtime"`
	Memory   int64     `json:"memory"`
	Graded   time.Time `json:"graded"`
}
