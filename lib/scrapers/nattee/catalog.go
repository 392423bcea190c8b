package nattee

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"natteescraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// Tasks fetches the authenticated landing page once and extracts the
// task catalog from it. Rows that fail validation are logged and
// skipped; losing one listing entry is recoverable, so a malformed row
// never aborts the whole catalog.
func (c *Client) Tasks(ctx context.Context) ([]TaskDescriptor, error) {
	ctx, span := tracer.Start(ctx, "client:Tasks")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch task listing")
		return nil, err
	}

	tasks, err := parseTasks(ctx, res.Body(), c.BaseUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse task listing")
		return nil, err
	}
	return tasks, nil
}

func parseTasks(ctx context.Context, body []byte, base *url.URL) ([]TaskDescriptor, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, extractionErr("unparsable task listing: %v", err)
	}

	mainTable, err := htmlutil.FindOne(doc.Selection, "table#main_table")
	if err != nil {
		return nil, extractionErr("main tasks table: %v", err)
	}
	tableBody, err := htmlutil.FindOne(mainTable, "tbody")
	if err != nil {
		return nil, extractionErr("main table body: %v", err)
	}

	taskIds, err := taskIdOptions(doc)
	if err != nil {
		return nil, err
	}

	var tasks []TaskDescriptor
	tableBody.ChildrenFiltered("tr").Each(func(_ int, row *goquery.Selection) {
		task, err := parseTaskRow(row, taskIds, base)
		if err != nil {
			slog.WarnContext(ctx, "skipping task row", "err", err)
			return
		}
		tasks = append(tasks, task)
	})

	return tasks, nil
}

// taskIdOptions reads the ordered stable task identifiers off the side
// dropdown; the option order defines the index used to cross-reference
// listing rows. The first option is a placeholder.
func taskIdOptions(doc *goquery.Document) ([]string, error) {
	selector, err := htmlutil.FindOne(doc.Selection, "select#submission_problem_id")
	if err != nil {
		return nil, extractionErr("task id selector: %v", err)
	}

	var ids []string
	selector.Find("option").Each(func(i int, option *goquery.Selection) {
		if i == 0 {
			return
		}
		if value := option.AttrOr("value", ""); value != "" {
			ids = append(ids, value)
		}
	})
	return ids, nil
}

func parseTaskRow(row *goquery.Selection, taskIds []string, base *url.URL) (TaskDescriptor, error) {
	columns := row.Children()
	if columns.Length() != 6 {
		return TaskDescriptor{}, validationErr("unexpected number of columns: %d", columns.Length())
	}

	index, err := taskRowIndex(columns.Eq(0))
	if err != nil {
		return TaskDescriptor{}, err
	}
	if index < 0 || index >= len(taskIds) {
		return TaskDescriptor{}, validationErr("row index %d has no matching task id", index)
	}

	info := columns.Eq(1)

	name := strings.TrimSpace(info.Find(".font-monospace").First().Text())
	nickname := strings.TrimSpace(info.Find("strong").First().Text())
	if name == "" || nickname == "" {
		return TaskDescriptor{}, validationErr("task name or nickname element is missing")
	}

	href := info.Find("a[href*='get_statement']").First().AttrOr("href", "")
	if href == "" {
		return TaskDescriptor{}, validationErr("statement link is missing")
	}
	pdfUrl, err := base.Parse(href)
	if err != nil {
		return TaskDescriptor{}, validationErr("bad statement link %q: %v", href, err)
	}

	return TaskDescriptor{
		Name:     name,
		Nickname: nickname,
		Id:       taskIds[index],
		PdfUrl:   pdfUrl.String(),
	}, nil
}

// taskRowIndex converts the 1-based visual index in the row's first
// column to the 0-based dropdown index.
func taskRowIndex(column *goquery.Selection) (int, error) {
	text := strings.TrimSpace(column.Find("div").First().Text())
	if text == "" || strings.ContainsFunc(text, func(r rune) bool { return r < '0' || r > '9' }) {
		return 0, validationErr("task index element is missing or invalid")
	}
	index, err := strconv.Atoi(text)
	if err != nil || index < 1 {
		return 0, validationErr("task index element is missing or invalid")
	}
	return index - 1, nil
}
