package nattee

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"natteescraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// The code block is captured with a plain regex instead of the
// document tree: submitted code regularly contains raw '<' and '>'
// (C++ templates, shift operators) which corrupt structural parsing.
var codeBlockRegex = regexp.MustCompile(`(?s)<textarea[^>]*>(.*)</textarea>`)

// the grader renders a trailing newline entity after the code block
const trailingNewlineEntity = "&#10;"

// placeholder the platform shows instead of a user link when the
// submission's author is withheld
const redactedAuthor = "(hidden)"

const gradedTimeLayout = "January 2, 2006 15:04"

var gradedAtRegex = regexp.MustCompile(`\(at ([^)]+)\)`)

// cleanCode normalizes an extracted code block: strips CRs, trims
// surrounding whitespace and drops the trailing newline-entity
// artifact. Applying it twice yields the same result.
func cleanCode(raw string) string {
	code := strings.ReplaceAll(raw, "\r", "")
	for {
		trimmed := strings.TrimSpace(code)
		trimmed = strings.TrimSuffix(trimmed, trailingNewlineEntity)
		if trimmed == code {
			return code
		}
		code = trimmed
	}
}

// Submission fetches and parses one submission page. A single fetch
// attempt, no retries.
func (c *Client) Submission(ctx context.Context, submissionId string) (Submission, error) {
	ctx, span := tracer.Start(ctx, "client:Submission")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf(submissionPath, submissionId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch submission page")
		return Submission{}, err
	}

	sub, err := parseSubmission(string(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse submission page")
		return Submission{}, fmt.Errorf("submission %s: %w", submissionId, err)
	}
	return sub, nil
}

func parseSubmission(body string) (Submission, error) {
	match := codeBlockRegex.FindStringSubmatchIndex(body)
	if match == nil {
		return Submission{}, extractionErr("no code block found")
	}
	code := cleanCode(body[match[2]:match[3]])

	// reparse with the code block cut out so raw angle brackets in the
	// code cannot distort the rest of the tree
	remainder := body[:match[0]] + body[match[1]:]
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(remainder))
	if err != nil {
		return Submission{}, extractionErr("unparsable submission page: %v", err)
	}

	author, err := parseSubmissionAuthor(doc)
	if err != nil {
		return Submission{}, err
	}

	taskId, err := parseSubmissionTaskId(doc)
	if err != nil {
		return Submission{}, err
	}

	score, err := labeledFloatBefore(doc, "Points", "/")
	if err != nil {
		return Submission{}, err
	}

	langCell, err := htmlutil.NextToLabel(doc.Selection, "td", "Language")
	if err != nil {
		return Submission{}, extractionErr("%v", err)
	}
	language, err := parseLanguage(strings.TrimSpace(langCell.Text()))
	if err != nil {
		return Submission{}, err
	}

	runtime, err := labeledSpanFloat(doc, "Runtime")
	if err != nil {
		return Submission{}, err
	}
	memory, err := labeledSpanInt(doc, "Memory")
	if err != nil {
		return Submission{}, err
	}

	graded, err := parseSubmissionGraded(doc)
	if err != nil {
		return Submission{}, err
	}

	return Submission{
		Author:   author,
		TaskId:   taskId,
		Score:    score,
		Code:     code,
		Language: language,
		Runtime:  runtime,
		Memory:   memory,
		Graded:   graded,
	}, nil
}

func parseSubmissionAuthor(doc *goquery.Document) (*Author, error) {
	cell, err := htmlutil.NextToLabel(doc.Selection, "td", "User")
	if err != nil {
		return nil, extractionErr("%v", err)
	}

	name := strings.TrimSpace(htmlutil.OwnText(cell))
	if name == redactedAuthor {
		return nil, nil
	}

	link, err := htmlutil.FindOne(cell, "a")
	if err != nil {
		return nil, extractionErr("user cell has no profile link: %v", err)
	}
	href := link.AttrOr("href", "")
	id := lastPathSegment(href)
	if id == "" {
		return nil, extractionErr("no user id in profile link %q", href)
	}

	return &Author{
		Id:    id,
		Name:  name,
		Login: strings.TrimSpace(link.Text()),
	}, nil
}

func lastPathSegment(href string) string {
	parts := strings.Split(href, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

func parseSubmissionTaskId(doc *goquery.Document) (string, error) {
	heading, err := htmlutil.FindOne(doc.Selection, "h2")
	if err != nil {
		return "", extractionErr("%v", err)
	}
	text := heading.Text()
	_, suffix, found := strings.Cut(text, ":")
	if !found {
		return "", extractionErr("no task id in heading %q", text)
	}
	return strings.TrimSpace(suffix), nil
}

// labeledFloatBefore parses a float from the prefix of a "<value><sep><rest>"
// value cell, e.g. "87.5/100" with separator "/".
func labeledFloatBefore(doc *goquery.Document, label, sep string) (float64, error) {
	cell, err := htmlutil.NextToLabel(doc.Selection, "td", label)
	if err != nil {
		return 0, extractionErr("%v", err)
	}
	text := strings.TrimSpace(cell.Text())
	prefix, _, _ := strings.Cut(text, sep)
	value, err := strconv.ParseFloat(strings.TrimSpace(prefix), 64)
	if err != nil {
		return 0, extractionErr("bad %s value %q", label, text)
	}
	return value, nil
}

func labeledSpanText(doc *goquery.Document, label string) (string, error) {
	cell, err := htmlutil.NextToLabel(doc.Selection, "td", label)
	if err != nil {
		return "", extractionErr("%v", err)
	}
	span, err := htmlutil.FindOne(cell, "span")
	if err != nil {
		return "", extractionErr("no %s span: %v", label, err)
	}
	return strings.TrimSpace(span.Text()), nil
}

func labeledSpanFloat(doc *goquery.Document, label string) (float64, error) {
	text, err := labeledSpanText(doc, label)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, extractionErr("bad %s value %q", label, text)
	}
	return value, nil
}

func labeledSpanInt(doc *goquery.Document, label string) (int64, error) {
	text, err := labeledSpanText(doc, label)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, extractionErr("bad %s value %q", label, text)
	}
	return value, nil
}

func parseSubmissionGraded(doc *goquery.Document) (time.Time, error) {
	cell, err := htmlutil.NextToLabel(doc.Selection, "td", "Graded")
	if err != nil {
		return time.Time{}, extractionErr("%v", err)
	}
	text := strings.TrimSpace(cell.Text())
	groups := gradedAtRegex.FindStringSubmatch(text)
	if len(groups) < 2 {
		return time.Time{}, extractionErr("no graded timestamp in %q", text)
	}
	graded, err := time.Parse(gradedTimeLayout, groups[1])
	if err != nil {
		return time.Time{}, extractionErr("unparsable graded timestamp %q", groups[1])
	}
	return graded, nil
}
