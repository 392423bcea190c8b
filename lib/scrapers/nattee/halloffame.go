package nattee

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"natteescraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// HallOfFame fetches a task's ranking page and resolves every row's
// four submission references (best runtime, best memory, shortest
// code, first solver) into source-code snapshots. If a language shows
// up in more than one row the later row wins.
func (c *Client) HallOfFame(ctx context.Context, taskId string) (map[Language]HallOfFameEntry, error) {
	ctx, span := tracer.Start(ctx, "client:HallOfFame")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf(hallOfFamePath, taskId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch hall of fame page")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse hall of fame html")
		return nil, err
	}

	rows, err := hallOfFameRows(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to locate ranking table")
		return nil, err
	}

	entries := map[Language]HallOfFameEntry{}
	for _, row := range rows {
		entry := HallOfFameEntry{}
		codeFields := []*string{
			&entry.BestRuntime,
			&entry.BestMemory,
			&entry.ShortestCode,
			&entry.FirstSolver,
		}
		for i, id := range row.submissionIds {
			sub, err := c.Submission(ctx, id)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to resolve ranked submission")
				return nil, err
			}
			*codeFields[i] = sub.Code
		}
		entries[row.language] = entry
	}

	return entries, nil
}

type hallOfFameRow struct {
	language      Language
	submissionIds []string
}

// hallOfFameRows parses the ranking table: the last hover-styled table
// on the page (earlier ones are decorative), skipping its header row.
func hallOfFameRows(doc *goquery.Document) ([]hallOfFameRow, error) {
	tables := doc.Find("table.table-hover")
	if tables.Length() == 0 {
		return nil, extractionErr("no ranking table found")
	}
	rows := tables.Last().Find("tr")
	if rows.Length() < 1 {
		return nil, extractionErr("ranking table has no rows")
	}

	var parsed []hallOfFameRow
	var rowErr error
	rows.Slice(1, rows.Length()).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cell, err := htmlutil.FindOne(row, "td")
		if err != nil {
			rowErr = extractionErr("ranking row has no cells: %v", err)
			return false
		}
		language, err := parseLanguage(strings.TrimSpace(cell.Text()))
		if err != nil {
			rowErr = err
			return false
		}

		links := row.Find("a")
		if links.Length() != 4 {
			rowErr = extractionErr(
				"ranking row for %s has %d submission links, want 4",
				language, links.Length(),
			)
			return false
		}

		ids := make([]string, 0, 4)
		links.Each(func(_ int, link *goquery.Selection) {
			ids = append(ids, submissionIdFromRef(link.Text()))
		})

		parsed = append(parsed, hallOfFameRow{
			language:      language,
			submissionIds: ids,
		})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return parsed, nil
}

// submissionIdFromRef strips the "(#<id>)" decoration off a ranking
// link's visible text.
func submissionIdFromRef(text string) string {
	id := strings.TrimSpace(text)
	id = strings.Trim(id, "()")
	return strings.TrimPrefix(id, "#")
}
