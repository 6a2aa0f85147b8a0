package chapters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

func secPtr(v float64) *model.Seconds {
	s := model.Seconds(v)
	return &s
}

func TestSegment_NoChaptersGivesFullVideo(t *testing.T) {
	segs, err := Segment(300, nil)
	require.NoError(t, err)
	assert.Equal(t, []model.Segment{{Title: "Full Video", Start: 0, End: 300}}, segs)

	segs, err = Segment(300, []model.RawChapter{})
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, FullVideoTitle, segs[0].Title)
}

func TestSegment_IntroMain(t *testing.T) {
	segs, err := Segment(120, []model.RawChapter{
		{Title: "Intro", Start: 0},
		{Title: "Main", Start: 60},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.Segment{
		{Title: "Intro", Start: 0, End: 60},
		{Title: "Main", Start: 60, End: 120},
	}, segs)
}

func TestSegment_ExplicitEnds(t *testing.T) {
	segs, err := Segment(90, []model.RawChapter{
		{Title: "A", Start: 0, End: secPtr(30)},
		{Title: "B", Start: 30, End: secPtr(90)},
	})
	require.NoError(t, err)
	assert.Equal(t, model.Seconds(30), segs[0].End)
	assert.Equal(t, model.Seconds(90), segs[1].End)
}

func TestSegment_ClosesGaps(t *testing.T) {
	segs, err := Segment(100, []model.RawChapter{
		{Title: "A", Start: 5, End: secPtr(20)},
		{Title: "B", Start: 40, End: secPtr(70)},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.Segment{
		{Title: "A", Start: 0, End: 40},
		{Title: "B", Start: 40, End: 100},
	}, segs)
	assert.NoError(t, Check(segs, 100))
}

func TestSegment_DefaultTitles(t *testing.T) {
	segs, err := Segment(20, []model.RawChapter{{Start: 0}, {Title: "  ", Start: 10}})
	require.NoError(t, err)
	assert.Equal(t, "Chapter 1", segs[0].Title)
	assert.Equal(t, "Chapter 2", segs[1].Title)
}

func TestSegment_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		total model.Seconds
		raw   []model.RawChapter
	}{
		{"start equals total", 60, []model.RawChapter{{Title: "A", Start: 0}, {Title: "B", Start: 60}}},
		{"start past total", 60, []model.RawChapter{{Title: "A", Start: 90}}},
		{"non increasing starts", 100, []model.RawChapter{{Title: "A", Start: 0}, {Title: "B", Start: 50}, {Title: "C", Start: 50}}},
		{"decreasing starts", 100, []model.RawChapter{{Title: "A", Start: 40}, {Title: "B", Start: 10}}},
		{"end before start", 100, []model.RawChapter{{Title: "A", Start: 10, End: secPtr(5)}}},
		{"end equals start", 100, []model.RawChapter{{Title: "A", Start: 10, End: secPtr(10)}}},
		{"end overlaps next", 100, []model.RawChapter{{Title: "A", Start: 0, End: secPtr(60)}, {Title: "B", Start: 50}}},
		{"end past total", 100, []model.RawChapter{{Title: "A", Start: 0, End: secPtr(120)}}},
		{"negative start", 100, []model.RawChapter{{Title: "A", Start: -1}}},
		{"zero total", 0, nil},
		{"nan total", model.Seconds(math.NaN()), nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Segment(tc.total, tc.raw)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSegment_ContiguousAndIdempotent(t *testing.T) {
	raws := [][]model.RawChapter{
		nil,
		{{Title: "x", Start: 0}},
		{{Title: "a", Start: 0}, {Title: "b", Start: 12.5}, {Title: "c", Start: 33.3, End: secPtr(40)}},
		{{Title: "a", Start: 3}, {Title: "b", Start: 4}, {Title: "c", Start: 5}, {Title: "d", Start: 99.999}},
	}
	const total = model.Seconds(100)
	for i, raw := range raws {
		first, err := Segment(total, raw)
		require.NoError(t, err, "case %d", i)
		require.NoError(t, Check(first, total), "case %d", i)

		second, err := Segment(total, raw)
		require.NoError(t, err)
		assert.Equal(t, first, second, "case %d", i)

		// réinjecter les segments comme chapitres donne le même résultat
		again := make([]model.RawChapter, len(first))
		for j, s := range first {
			again[j] = model.RawChapter{Title: s.Title, Start: s.Start, End: secPtr(float64(s.End))}
		}
		third, err := Segment(total, again)
		require.NoError(t, err)
		assert.Equal(t, first, third, "case %d", i)
	}
}

func TestCheck_DetectsGap(t *testing.T) {
	err := Check([]model.Segment{{Title: "a", Start: 0, End: 10}, {Title: "b", Start: 11, End: 20}}, 20)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
