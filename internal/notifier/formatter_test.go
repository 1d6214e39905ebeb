package notifier

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MoexLens/internal/model"
)

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 10))

	chunks := SplitMessage("aaaa\nbbbb\ncccc\n", 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\n"}, chunks)

	long := strings.Repeat("ж", 25)
	chunks = SplitMessage(long, 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, long, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
	}
}

func TestFormatBondsDigest(t *testing.T) {
	table := "Код  Название\n---  --------\nA<1  Ф&К"
	msgs := FormatBondsDigest(5, 3, table, MessageLimit)
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasPrefix(msgs[0], "Найдено облигаций: 5\nПоказано: 3\n\n<pre>"))
	assert.Contains(t, msgs[0], "A&lt;1  Ф&amp;К")
	assert.True(t, strings.HasSuffix(msgs[0], "</pre>"))
}

func TestFormatBondsDigest_SplitsOnLines(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = strings.Repeat("x", 90)
	}
	msgs := FormatBondsDigest(100, 100, strings.Join(lines, "\n"), 1000)
	require.Greater(t, len(msgs), 1)
	for _, m := range msgs {
		assert.LessOrEqual(t, utf8.RuneCountInString(m), 1000)
		assert.True(t, strings.HasPrefix(m, "Найдено") || strings.HasPrefix(m, "<pre>"))
		assert.True(t, strings.HasSuffix(m, "</pre>"))
	}
}

func TestFormatChartCaption(t *testing.T) {
	w := model.RenderWindow{
		Candles:  []model.Candle{{Open: 1, High: 2, Low: 0.5, Close: 1.5}},
		MinPrice: 0.5, MaxPrice: 2, Span: 1.5,
	}
	c := FormatChartCaption("SIH6", 300, w, "2026-03-02 10:00:00")
	assert.Contains(t, c, "<b>SIH6</b>")
	assert.Contains(t, c, "Свечей: 1 из 300")
	assert.Contains(t, c, "Мин: 0,50 | Макс: 2,00")
	assert.Contains(t, c, "Закрытие: 1,50 (2026-03-02 10:00:00)")

	assert.Contains(t, FormatChartCaption("X", 0, model.RenderWindow{}, ""), "Нет данных")
}
