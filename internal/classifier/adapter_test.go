package classifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognisense-backend/internal/models"
)

type recordingZeroShot struct {
	mu       sync.Mutex
	gotText  string
	gotLabel []string
	ranked   []models.LabelScore
	err      error
}

func (r *recordingZeroShot) ZeroShot(_ context.Context, text string, labels []string, _ bool) ([]models.LabelScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gotText = text
	r.gotLabel = labels
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.LabelScore, len(r.ranked))
	copy(out, r.ranked)
	return out, nil
}

func zeroShotLoader(m ZeroShotModel) func(context.Context) (ZeroShotModel, error) {
	return func(context.Context) (ZeroShotModel, error) { return m, nil }
}

func TestClassifyCategory_EmptyTextFallsBack(t *testing.T) {
	a := NewAdapter(Loaders{}, nil, 0, nil)

	c := a.ClassifyCategory(context.Background(), "   ", nil, false)

	assert.Equal(t, []string{"Other"}, c.Labels)
	assert.Equal(t, []float64{1.0}, c.Scores)
	assert.NotEmpty(t, c.Error)
	assert.ErrorIs(t, c.Err, ErrEmptyText)
}

func TestClassifyCategory_NotConfiguredFallsBack(t *testing.T) {
	a := NewAdapter(Loaders{}, nil, 0, nil)

	c := a.ClassifyCategory(context.Background(), "some text", nil, false)

	assert.Equal(t, "Other", c.Labels[0])
	assert.ErrorIs(t, c.Err, ErrNotConfigured)
}

func TestClassifyCategory_LoadFailureIsRetried(t *testing.T) {
	calls := 0
	model := &recordingZeroShot{ranked: []models.LabelScore{{Label: "News", Score: 0.9}}}
	a := NewAdapter(Loaders{ZeroShot: func(context.Context) (ZeroShotModel, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("download failed")
		}
		return model, nil
	}}, nil, 0, nil)

	first := a.ClassifyCategory(context.Background(), "text", nil, false)
	assert.ErrorIs(t, first.Err, ErrModelUnavailable)

	second := a.ClassifyCategory(context.Background(), "text", nil, false)
	require.NoError(t, second.Err)
	assert.Equal(t, "News", second.Labels[0])
	assert.Equal(t, 2, calls)
}

func TestClassifyCategory_TruncatesLongText(t *testing.T) {
	model := &recordingZeroShot{ranked: []models.LabelScore{{Label: "News", Score: 1}}}
	a := NewAdapter(Loaders{ZeroShot: zeroShotLoader(model)}, nil, 512, nil)

	long := strings.Repeat("word ", 600)
	a.ClassifyCategory(context.Background(), long, nil, false)

	assert.Len(t, strings.Fields(model.gotText), 512)
	assert.Equal(t, DefaultTaxonomy().Labels, model.gotLabel)
}

func TestClassifyCategory_SortsByScore(t *testing.T) {
	model := &recordingZeroShot{ranked: []models.LabelScore{
		{Label: "Music", Score: 0.1},
		{Label: "Programming", Score: 0.7},
		{Label: "News", Score: 0.2},
	}}
	a := NewAdapter(Loaders{ZeroShot: zeroShotLoader(model)}, nil, 0, nil)

	c := a.ClassifyWithGroup(context.Background(), "go code")

	assert.Equal(t, []string{"Programming", "News", "Music"}, c.Labels)
	assert.Equal(t, "Productive", c.Group)
}

func TestClassifyWithGroup_UnknownLabelIsOther(t *testing.T) {
	model := &recordingZeroShot{ranked: []models.LabelScore{{Label: "Astrology", Score: 1}}}
	a := NewAdapter(Loaders{ZeroShot: zeroShotLoader(model)}, nil, 0, nil)

	c := a.ClassifyWithGroup(context.Background(), "stars")

	assert.Equal(t, OtherGroup, c.Group)
}

func TestClassifyProductivity_UsesBinaryLabels(t *testing.T) {
	model := &recordingZeroShot{ranked: []models.LabelScore{{Label: "Productive", Score: 0.8}, {Label: "Distracting", Score: 0.2}}}
	a := NewAdapter(Loaders{ZeroShot: zeroShotLoader(model)}, nil, 0, nil)

	c := a.ClassifyProductivity(context.Background(), "writing a report")

	assert.Equal(t, []string{"Productive", "Distracting"}, model.gotLabel)
	assert.Equal(t, "Productive", c.Labels[0])
}

func TestLazyLoad_OnceUnderConcurrency(t *testing.T) {
	var mu sync.Mutex
	loads := 0
	loaders := LoadersFor(func(context.Context) (Backend, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		return NewMockBackend(), nil
	})
	a := NewAdapter(loaders, nil, 0, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = a.AnalyzeSentiment(context.Background(), "great day")
			_ = a.ClassifyWithGroup(context.Background(), "great day")
			_, _ = a.DetectEmotions(context.Background(), "great day")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, loads)
}

type failingSentiment struct{}

func (failingSentiment) Sentiment(context.Context, string) (models.LabelScore, error) {
	return models.LabelScore{}, errors.New("boom")
}

func TestAnalyzeSentiment(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		a := NewAdapter(Loaders{}, nil, 0, nil)
		_, err := a.AnalyzeSentiment(context.Background(), "")
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("not configured", func(t *testing.T) {
		a := NewAdapter(Loaders{}, nil, 0, nil)
		_, err := a.AnalyzeSentiment(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("model error", func(t *testing.T) {
		a := NewAdapter(Loaders{Sentiment: func(context.Context) (SentimentModel, error) {
			return failingSentiment{}, nil
		}}, nil, 0, nil)
		_, err := a.AnalyzeSentiment(context.Background(), "hello")
		assert.Error(t, err)
	})
}

func TestDetectEmotions_FallsBackToSentiment(t *testing.T) {
	mock := NewMockBackend()
	a := NewAdapter(Loaders{
		Sentiment: func(context.Context) (SentimentModel, error) { return mock, nil },
		Emotion: func(context.Context) (EmotionModel, error) {
			return nil, errors.New("emotion model missing")
		},
	}, nil, 0, nil)

	emotions, err := a.DetectEmotions(context.Background(), "what a great and wonderful day")

	require.NoError(t, err)
	require.Len(t, emotions, 1)
	assert.Equal(t, "POSITIVE", emotions[0].Label)
}

func TestDetectEmotions_CapsAtFive(t *testing.T) {
	a := NewAdapter(LoadersFor(func(context.Context) (Backend, error) {
		return NewMockBackend(), nil
	}), nil, 0, nil)

	emotions, err := a.DetectEmotions(context.Background(), "happy sad angry afraid wow gross")

	require.NoError(t, err)
	assert.Len(t, emotions, 5)
	for i := 1; i < len(emotions); i++ {
		assert.GreaterOrEqual(t, emotions[i-1].Score, emotions[i].Score)
	}
}

func TestEmotionalBalance(t *testing.T) {
	b := EmotionalBalance([]models.LabelScore{
		{Label: "joy", Score: 0.6},
		{Label: "anger", Score: 0.2},
		{Label: "neutral", Score: 0.2},
	})

	assert.InDelta(t, 0.6, b.Positive, 1e-9)
	assert.InDelta(t, 0.2, b.Negative, 1e-9)
	assert.InDelta(t, 0.2, b.Neutral, 1e-9)
	assert.InDelta(t, 0.4, b.Score, 1e-9)

	assert.Equal(t, models.EmotionalBalance{}, EmotionalBalance(nil))
}
