package nattee

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// TestCases fetches a task's test-case page and pairs its textarea
// blocks in document order: even-indexed blocks are inputs, odd ones
// outputs. An unpaired trailing block is dropped rather than treated
// as an error.
func (c *Client) TestCases(ctx context.Context, taskId string) ([]TestCase, error) {
	ctx, span := tracer.Start(ctx, "client:TestCases")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf(testcasesPath, taskId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch test case page")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse test case html")
		return nil, err
	}

	return pairTestCases(doc), nil
}

func pairTestCases(doc *goquery.Document) []TestCase {
	var blocks []string
	doc.Find("textarea").Each(func(_ int, block *goquery.Selection) {
		blocks = append(blocks, block.Text())
	})

	var cases []TestCase
	for i := 0; i+1 < len(blocks); i += 2 {
		cases = append(cases, TestCase{
			Input:  blocks[i],
			Output: blocks[i+1],
		})
	}
	return cases
}
