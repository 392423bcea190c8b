package nattee

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func solutionCode(id string) string {
	return fmt.Sprintf("int main() { /* solution %s */ }", id)
}

func hofRow(language string, ids ...string) string {
	row := "<tr><td>" + language + "</td>"
	for _, id := range ids {
		row += fmt.Sprintf(`<td><a href="/submissions/%s">(#%s)</a></td>`, id, id)
	}
	return row + "</tr>"
}

func hofPage(rows ...string) string {
	page := `<html><body>
<table class="table-hover"><tr><td>decorative navigation</td></tr></table>
<table class="table-hover">
<tr><th>Language</th><th>Runtime</th><th>Memory</th><th>Shortest</th><th>First</th></tr>`
	for _, row := range rows {
		page += row
	}
	return page + "</table></body></html>"
}

func newGraderServer(t *testing.T, hof string) *Client {
	mux := http.NewServeMux()
	mux.HandleFunc("/report/problem_hof/task_42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, hof)
	})
	mux.HandleFunc("/submissions/", func(w http.ResponseWriter, r *http.Request) {
		id := path.Base(r.URL.Path)
		fmt.Fprint(w, submissionPage(authorCell, "100.0/100", "C++", solutionCode(id)))
	})
	mux.HandleFunc("/testcases/show_problem/task_42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<textarea>1 2</textarea><textarea>3</textarea>
<textarea>4 5</textarea><textarea>9</textarea>
</body></html>`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)
	return client
}

func TestHallOfFame(t *testing.T) {
	client := newGraderServer(t, hofPage(hofRow("C++", "101", "102", "103", "104")))

	entries, err := client.HallOfFame(context.Background(), "task_42")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[LangCpp]
	require.Equal(t, solutionCode("101"), entry.BestRuntime)
	require.Equal(t, solutionCode("102"), entry.BestMemory)
	require.Equal(t, solutionCode("103"), entry.ShortestCode)
	require.Equal(t, solutionCode("104"), entry.FirstSolver)
}

func TestHallOfFameDuplicateLanguageOverwrites(t *testing.T) {
	client := newGraderServer(t, hofPage(
		hofRow("C++", "101", "102", "103", "104"),
		hofRow("C++", "201", "202", "203", "204"),
	))

	entries, err := client.HallOfFame(context.Background(), "task_42")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, solutionCode("201"), entries[LangCpp].BestRuntime)
}

func TestHallOfFameUnknownLanguage(t *testing.T) {
	client := newGraderServer(t, hofPage(hofRow("Brainfuck", "101", "102", "103", "104")))

	_, err := client.HallOfFame(context.Background(), "task_42")
	require.ErrorIs(t, err, ErrExtraction)
	require.ErrorContains(t, err, "Brainfuck")
}

func TestHallOfFameWrongLinkCount(t *testing.T) {
	client := newGraderServer(t, hofPage(hofRow("C++", "101", "102")))

	_, err := client.HallOfFame(context.Background(), "task_42")
	require.ErrorIs(t, err, ErrExtraction)
	require.ErrorContains(t, err, "want 4")
}

func TestResolveTask(t *testing.T) {
	client := newGraderServer(t, hofPage(hofRow("Python", "11", "12", "13", "14")))

	task, err := client.ResolveTask(context.Background(), TaskDescriptor{
		Name:     "A+B",
		Nickname: "SUM",
		Id:       "task_42",
		PdfUrl:   "https://cedt-grader.nattee.net/tasks/get_statement/42",
	})
	require.NoError(t, err)

	require.Equal(t, "A+B", task.Name)
	require.Equal(t, "SUM", task.Nickname)
	require.Equal(t, "task_42", task.Id)

	entry := task.HallOfFame[LangPython]
	for _, code := range []string{entry.BestRuntime, entry.BestMemory, entry.ShortestCode, entry.FirstSolver} {
		require.NotEmpty(t, code)
	}
	require.Equal(t, []TestCase{
		{Input: "1 2", Output: "3"},
		{Input: "4 5", Output: "9"},
	}, task.TestCases)
}

func TestSubmissionIdFromRef(t *testing.T) {
	require.Equal(t, "12345", submissionIdFromRef(" (#12345) "))
	require.Equal(t, "abc9", submissionIdFromRef("(#abc9)"))
}
