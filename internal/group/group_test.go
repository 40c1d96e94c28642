package group

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dodo/internal/task"
)

func at(id string, ts string) task.Task {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return task.Task{ID: id, Content: "task " + id, CreatedAt: t}
}

func keys(buckets []Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Key
	}
	return out
}

func ids(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestGroup_ByDay(t *testing.T) {
	tasks := []task.Task{
		at("a", "2024-01-01T09:00:00Z"),
		at("b", "2024-01-02T23:59:00Z"),
		at("c", "2024-01-01T18:00:00Z"),
		at("d", "2024-01-02T00:00:00Z"),
	}

	buckets, err := Group(tasks, Day, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-02", "2024-01-01"}, keys(buckets))
	assert.Equal(t, []string{"b", "d"}, ids(buckets[0].Tasks))
	assert.Equal(t, []string{"c", "a"}, ids(buckets[1].Tasks))
	assert.Equal(t, "Tuesday, January 2, 2024", buckets[0].Label)
}

func TestGroup_DayUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	tasks := []task.Task{
		at("a", "2024-01-01T14:00:00Z"), // 23:00 JST
		at("b", "2024-01-01T16:00:00Z"), // 01:00 JST next day
	}

	utc, err := Group(tasks, Day, time.UTC)
	require.NoError(t, err)
	assert.Len(t, utc, 1)

	jst, err := Group(tasks, Day, tokyo)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02", "2024-01-01"}, keys(jst))
}

func TestGroup_ByWeekUsesISOWeeks(t *testing.T) {
	tasks := []task.Task{
		at("sun", "2023-12-31T10:00:00Z"), // ISO week 52 of 2023
		at("mon", "2024-01-01T10:00:00Z"), // ISO week 1 of 2024
		at("sun2", "2024-01-07T10:00:00Z"),
		at("dec30", "2024-12-30T10:00:00Z"), // ISO week 1 of 2025
	}

	buckets, err := Group(tasks, Week, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-W01", "2024-W01", "2023-W52"}, keys(buckets))
	assert.Equal(t, []string{"sun2", "mon"}, ids(buckets[1].Tasks))
	assert.Equal(t, "Week 1, 2024", buckets[1].Label)
}

func TestGroup_ByMonthAndYear(t *testing.T) {
	tasks := []task.Task{
		at("a", "2023-11-15T10:00:00Z"),
		at("b", "2024-01-31T10:00:00Z"),
		at("c", "2024-01-01T10:00:00Z"),
		at("d", "2024-02-01T10:00:00Z"),
	}

	months, err := Group(tasks, Month, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02", "2024-01", "2023-11"}, keys(months))
	assert.Equal(t, "January 2024", months[1].Label)

	years, err := Group(tasks, Year, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "2023"}, keys(years))
	assert.Equal(t, []string{"d", "b", "c"}, ids(years[0].Tasks))
}

func TestGroup_TiesBrokenByID(t *testing.T) {
	tasks := []task.Task{
		at("2", "2024-01-01T10:00:00Z"),
		at("1", "2024-01-01T10:00:00Z"),
	}
	buckets, err := Group(tasks, Day, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(buckets[0].Tasks))
}

func TestGroup_Idempotent(t *testing.T) {
	tasks := []task.Task{
		at("a", "2024-01-01T09:00:00Z"),
		at("b", "2024-03-02T09:00:00Z"),
		at("c", "2024-03-01T09:00:00Z"),
	}
	first, err := Group(tasks, Day, time.UTC)
	require.NoError(t, err)
	second, err := Group(tasks, Day, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGroup_Empty(t *testing.T) {
	buckets, err := Group(nil, Month, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestGroup_InvalidGranularity(t *testing.T) {
	_, err := Group(nil, Granularity("fortnight"), time.UTC)
	assert.ErrorIs(t, err, ErrInvalidGranularity)

	_, err = ParseGranularity("hour")
	assert.ErrorIs(t, err, ErrInvalidGranularity)

	g, err := ParseGranularity(" Week ")
	require.NoError(t, err)
	assert.Equal(t, Week, g)
}

func TestSortNewestFirstDoesNotMutate(t *testing.T) {
	tasks := []task.Task{
		at("a", "2024-01-01T09:00:00Z"),
		at("b", "2024-01-02T09:00:00Z"),
	}
	sorted := SortNewestFirst(tasks)
	assert.Equal(t, []string{"b", "a"}, ids(sorted))
	assert.Equal(t, []string{"a", "b"}, ids(tasks))
}
