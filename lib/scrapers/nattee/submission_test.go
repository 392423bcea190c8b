package nattee

import (
	"fmt"
	"testing"
	"time"

	"natteescraper/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const templateCode = `#include <vector>
template <typename T> T add(T a, T b) { return a + b; }
int main() { return add<int>(1, 2) >> 1; }`

func submissionPage(userCell, points, language, code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><body>
<h2>Submission: task_42</h2>
<table class="table">
<tr><td>User</td><td>%s</td></tr>
<tr><td>Points</td><td>%s</td></tr>
<tr><td>Language</td><td>%s</td></tr>
<tr><td>Runtime</td><td><span>0.02</span> sec</td></tr>
<tr><td>Memory</td><td><span>1864</span> kbytes</td></tr>
<tr><td>Graded</td><td>2 days ago (at December 31, 2024 23:59)</td></tr>
</table>
<textarea readonly="readonly">
%s&#10;
</textarea>
</body></html>`, userCell, points, language, code)
}

const authorCell = `alice liddell <a href="/users/alice42">al42</a>`

func TestParseSubmission(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/nattee")
	defer cleanup()

	sub, err := parseSubmission(submissionPage(authorCell, "87.5/100", "C++", templateCode))
	require.NoError(t, err)

	require.Equal(t, templateCode, sub.Code)
	require.Equal(t, "task_42", sub.TaskId)
	require.Equal(t, 87.5, sub.Score)
	require.Equal(t, LangCpp, sub.Language)
	require.Equal(t, 0.02, sub.Runtime)
	require.Equal(t, int64(1864), sub.Memory)
	require.Equal(t, time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), sub.Graded)

	require.NotNil(t, sub.Author)
	require.Equal(t, "alice42", sub.Author.Id)
	require.Equal(t, "alice liddell", sub.Author.Name)
	require.Equal(t, "al42", sub.Author.Login)
}

func TestParseSubmissionRedactedAuthor(t *testing.T) {
	sub, err := parseSubmission(submissionPage(redactedAuthor, "100.0/100", "C", "int main(){}"))
	require.NoError(t, err)
	require.Nil(t, sub.Author)
}

func TestParseSubmissionUnknownLanguage(t *testing.T) {
	_, err := parseSubmission(submissionPage(authorCell, "100.0/100", "Brainfuck", "+++"))
	require.ErrorIs(t, err, ErrExtraction)
	require.ErrorContains(t, err, "Brainfuck")
}

func TestParseSubmissionNoCodeBlock(t *testing.T) {
	_, err := parseSubmission(`<html><body><h2>Submission: task_1</h2></body></html>`)
	require.ErrorIs(t, err, ErrExtraction)
	require.ErrorContains(t, err, "no code block")
}

func TestParseSubmissionBadGradedDate(t *testing.T) {
	page := `<html><body>
<h2>Submission: task_1</h2>
<table>
<tr><td>User</td><td>` + authorCell + `</td></tr>
<tr><td>Points</td><td>50.0/100</td></tr>
<tr><td>Language</td><td>Go</td></tr>
<tr><td>Runtime</td><td><span>1.5</span></td></tr>
<tr><td>Memory</td><td><span>2048</span></td></tr>
<tr><td>Graded</td><td>2 days ago (at 2024-12-31T23:59)</td></tr>
</table>
<textarea>package main</textarea>
</body></html>`
	_, err := parseSubmission(page)
	require.ErrorIs(t, err, ErrExtraction)
	require.ErrorContains(t, err, "2024-12-31T23:59")
}

func TestCleanCode(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{"\r\nint main() {\r\n}\r\n", "int main() {\n}"},
		{"  code  ", "code"},
		{"code&#10;", "code"},
		{"code&#10;\n&#10;", "code"},
		{"a < b && b > c", "a < b && b > c"},
	}

	for _, test := range testCases {
		cleaned := cleanCode(test.raw)
		require.Equal(t, test.expected, cleaned)
		require.Equal(t, cleaned, cleanCode(cleaned), "clean must be idempotent")
	}
}

func TestCodeWithLiteralAngleBrackets(t *testing.T) {
	sub, err := parseSubmission(submissionPage(authorCell, "95.0/100", "C++", templateCode))
	require.NoError(t, err)
	require.Equal(t, templateCode, sub.Code)
	require.Equal(t, sub.Code, cleanCode(sub.Code))
}
