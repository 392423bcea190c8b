package nattee

import (
	"context"

	"go.opentelemetry.io/otel/codes"
)

// ResolveTask turns a catalog descriptor into a fully populated Task.
// Pure composition: any failure in either sub-resolution propagates
// unchanged and no partial Task is ever returned.
func (c *Client) ResolveTask(ctx context.Context, desc TaskDescriptor) (Task, error) {
	ctx, span := tracer.Start(ctx, "client:ResolveTask")
	defer span.End()

	hallOfFame, err := c.HallOfFame(ctx, desc.Id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve hall of fame")
		return Task{}, err
	}

	testCases, err := c.TestCases(ctx, desc.Id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve test cases")
		return Task{}, err
	}

	return Task{
		Name:       desc.Name,
		Nickname:   desc.Nickname,
		Id:         desc.Id,
		PdfUrl:     desc.PdfUrl,
		HallOfFame: hallOfFame,
		TestCases:  testCases,
	}, nil
}
