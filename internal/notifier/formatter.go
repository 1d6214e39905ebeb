package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"MoexLens/internal/model"
)

const (
	StartText = "Бот перезапущен. Команды:\n" +
		"/chart [тикер] — график свечей и выгрузка в Excel\n" +
		"/bonds [n] [фильтры] — облигации с наибольшей купонной доходностью\n" +
		"Фильтры: years_from= years_to= months_from= months_to= type=ofz|municipal|corporate " +
		"coupon=fixed|float|none freq= currency= amort=да|нет offer=да|нет limit=; any сбрасывает фильтр"
	NoBondsText   = "По заданным фильтрам облигации не найдены."
	// BadFilterText prefixes a rejected /bonds argument list.
	BadFilterText = "❌ Неверный фильтр"
)

// FormatChartCaption describes the window drawn in a chart image.
func FormatChartCaption(ticker string, total int, w model.RenderWindow, lastBegin string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b>\n", html.EscapeString(ticker)))
	if w.Empty() {
		b.WriteString("Нет данных")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Свечей: %d из %d\n", len(w.Candles), total))
	b.WriteString(fmt.Sprintf("Мин: %s | Макс: %s\n", model.FormatDecimal(w.MinPrice), model.FormatDecimal(w.MaxPrice)))
	if last, ok := w.Last(); ok {
		b.WriteString(fmt.Sprintf("Закрытие: %s", model.FormatDecimal(last.Close)))
		if lastBegin != "" {
			b.WriteString(fmt.Sprintf(" (%s)", html.EscapeString(lastBegin)))
		}
	}
	return b.String()
}

// FormatBondsDigest wraps a bond table into Telegram messages, each within
// limit. The first message carries the counts.
func FormatBondsDigest(found, shown int, table string, limit int) []string {
	header := fmt.Sprintf("Найдено облигаций: %d\nПоказано: %d\n\n", found, shown)
	const open, closeTag = "<pre>", "</pre>"

	var out []string
	var cur strings.Builder
	cur.WriteString(header)
	cur.WriteString(open)
	size := runeLen(header) + runeLen(open)
	lines := 0

	flush := func() {
		cur.WriteString(closeTag)
		out = append(out, cur.String())
		cur.Reset()
		cur.WriteString(open)
		size = runeLen(open)
		lines = 0
	}

	for _, line := range strings.Split(table, "\n") {
		escaped := html.EscapeString(line)
		n := runeLen(escaped) + 1
		if lines > 0 && size+n+runeLen(closeTag) > limit {
			flush()
		}
		if lines > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(escaped)
		size += n
		lines++
	}
	cur.WriteString(closeTag)
	return append(out, cur.String())
}

// FormatDigestHeader opens the scheduled digest.
func FormatDigestHeader(now time.Time) string {
	return fmt.Sprintf("🗓 <b>Дайджест</b> | %s", now.Format("2006-01-02 15:04"))
}

// SplitMessage cuts text into chunks of at most limit runes, preferring line
// breaks.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || runeLen(text) <= limit {
		return []string{text}
	}
	var out []string
	var cur strings.Builder
	size := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		for runeLen(line) > limit {
			if size > 0 {
				out = append(out, cur.String())
				cur.Reset()
				size = 0
			}
			r := []rune(line)
			out = append(out, string(r[:limit]))
			line = string(r[limit:])
		}
		n := runeLen(line)
		if size+n > limit {
			out = append(out, cur.String())
			cur.Reset()
			size = 0
		}
		cur.WriteString(line)
		size += n
	}
	if size > 0 {
		out = append(out, cur.String())
	}
	return out
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
