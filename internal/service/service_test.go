package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"labparse/internal/parser"
	"labparse/internal/parser/builtin"
	"labparse/internal/service"
	"labparse/internal/textextract"
	"labparse/mocks"
)

const questText = "Quest Diagnostics\nGlucose 95 70-99 mg/dL\nSodium 140 136-145 mmol/L\n"

func newRouter() *parser.Router {
	return parser.NewRouter(builtin.NewRegistry(parser.Options{}, nil, 0), textextract.New(0, nil), nil)
}

func TestParseService_Parse(t *testing.T) {
	svc := service.NewParseService(newRouter(), nil, nil)

	res, err := svc.Parse(context.Background(), service.ParseInput{Filename: "labs.txt", Data: []byte(questText)})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "quest", res.ParserUsed)
}

func TestParseService_ForcedAdapter(t *testing.T) {
	svc := service.NewParseService(newRouter(), nil, nil)

	res, err := svc.Parse(context.Background(), service.ParseInput{Filename: "labs.txt", Data: []byte(questText), Adapter: "generic_lab"})
	require.NoError(t, err)
	assert.Equal(t, "generic_lab", res.ParserUsed)

	_, err = svc.Parse(context.Background(), service.ParseInput{Filename: "labs.txt", Data: []byte(questText), Adapter: "nope"})
	assert.True(t, errors.Is(err, service.ErrUnknownAdapter))
}

func TestParseService_ParseObject(t *testing.T) {
	store := new(mocks.MockObjectStorage)
	store.On("Download", mock.Anything, "labs", "2024/march/quest.txt").Return([]byte(questText), nil)
	store.On("Download", mock.Anything, "labs", "missing.pdf").Return(nil, errors.New("NoSuchKey"))
	svc := service.NewParseService(newRouter(), store, nil)

	res, err := svc.ParseObject(context.Background(), "labs", "2024/march/quest.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "quest", res.ParserUsed)

	_, err = svc.ParseObject(context.Background(), "labs", "missing.pdf", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoSuchKey")
	store.AssertExpectations(t)
}

func TestParseService_ParseObjectWithoutStorage(t *testing.T) {
	svc := service.NewParseService(newRouter(), nil, nil)
	_, err := svc.ParseObject(context.Background(), "labs", "a.pdf", "")
	assert.Error(t, err)
}

func TestParseService_Formats(t *testing.T) {
	formats := service.NewParseService(newRouter(), nil, nil).Formats()

	require.Len(t, formats, 13)
	assert.Equal(t, "quest", formats[0].Name)
	assert.Equal(t, "Universal Fallback", formats[12].DisplayName)
	assert.Equal(t, 1000, formats[12].Priority)
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveBatchDocument(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[outcome]++
}

func load(text string) func(context.Context) ([]byte, error) {
	return func(context.Context) ([]byte, error) { return []byte(text), nil }
}

func TestBatchService_Run(t *testing.T) {
	obs := &countingObserver{}
	svc := service.NewBatchService(newRouter(), 2, obs, nil)
	docs := []service.BatchDocument{
		{Filename: "quest.txt", Load: load(questText)},
		{Filename: "empty.txt", Load: load("   ")},
		{Filename: "gone.pdf", Load: func(context.Context) ([]byte, error) { return nil, errors.New("file not found") }},
		{Filename: "dexa.txt", Load: load("DexaFit Report\nTotal Body Fat % 22.5%\nFat Mass 39.4 lbs\n")},
	}

	res, err := svc.Run(context.Background(), docs, "")

	require.NoError(t, err)
	require.Len(t, res.Items, 4)
	assert.NotEqual(t, "", res.JobID.String())
	assert.Equal(t, "quest.txt", res.Items[0].Filename)
	assert.Equal(t, "quest", res.Items[0].Result.ParserUsed)
	assert.Equal(t, "dexafit", res.Items[3].Result.ParserUsed)
	assert.False(t, res.Items[1].Result.Success)
	assert.False(t, res.Items[2].Result.Success)
	assert.Contains(t, res.Items[2].Result.Error, "file not found")
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	assert.False(t, res.FinishedAt.Before(res.StartedAt))

	assert.Equal(t, 2, obs.counts[service.OutcomeSucceeded])
	assert.Equal(t, 1, obs.counts[service.OutcomeFailed])
	assert.Equal(t, 1, obs.counts[service.OutcomeLoadFailed])
}

func TestBatchService_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := service.NewBatchService(newRouter(), 1, nil, nil)

	_, err := svc.Run(ctx, []service.BatchDocument{{Filename: "a.txt", Load: load(questText)}}, "")

	assert.ErrorIs(t, err, context.Canceled)
}
