package entry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"mydiary/internal/app/client"
)

const dateLayout = "2006-01-02 15:04"

var (
	lockedMark = color.New(color.FgYellow).Sprint("[закрыта]")
	openMark   = color.New(color.FgGreen).Sprint("[открыта]")
	titleColor = color.New(color.Bold)
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printList(list client.EntryList) {
	if len(list.Entries) == 0 {
		fmt.Println("Записи не найдены")
		return
	}

	fmt.Printf("Найдено записей: %d\n\n", list.Total)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tДАТА\tНАСТРОЕНИЕ\tТЕГИ\tЗАГОЛОВОК")
	for _, e := range list.Entries {
		title := e.Title
		if e.Locked {
			title = lockedMark + " " + title
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			e.ID, e.CreatedAt.Local().Format(dateLayout), mood(e.Mood), strings.Join(e.Tags, ","), title)
	}
	_ = w.Flush()

	if shown := list.Offset + len(list.Entries); shown < list.Total {
		fmt.Printf("\nПоказаны %d-%d из %d, используйте --offset %d\n", list.Offset+1, shown, list.Total, shown)
	}
}

func printEntry(e *client.EntryView) {
	mark := openMark
	if e.IsProtected {
		mark = lockedMark
	}

	fmt.Printf("%s %s\n", titleColor.Sprint(e.Title), mark)
	fmt.Printf("ID: %d  Создана: %s  Изменена: %s\n",
		e.ID, e.CreatedAt.Local().Format(dateLayout), e.UpdatedAt.Local().Format(dateLayout))
	if e.Mood != nil {
		fmt.Printf("Настроение: %d/10\n", *e.Mood)
	}
	if len(e.Tags) > 0 {
		fmt.Printf("Теги: %s\n", strings.Join(e.Tags, ", "))
	}
	if len(e.Attachments) > 0 {
		fmt.Printf("Вложения: %s\n", strings.Join(e.Attachments, ", "))
	}
	fmt.Println()
	fmt.Println(e.Body)
}

func printStats(st client.Stats) {
	fmt.Printf("Всего записей: %d (закрытых: %d)\n", st.TotalEntries, st.ProtectedEntries)
	if st.AverageMood != nil {
		fmt.Printf("Среднее настроение: %.1f (по %d записям)\n", *st.AverageMood, st.MoodSamples)
	}
	if st.FirstEntryAt != nil && st.LastEntryAt != nil {
		fmt.Printf("Период: %s - %s\n", st.FirstEntryAt.Local().Format(dateLayout), st.LastEntryAt.Local().Format(dateLayout))
	}

	if len(st.Tags) == 0 {
		return
	}

	tags := make([]string, 0, len(st.Tags))
	for tag := range st.Tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if st.Tags[tags[i]] != st.Tags[tags[j]] {
			return st.Tags[tags[i]] > st.Tags[tags[j]]
		}
		return tags[i] < tags[j]
	})

	fmt.Println("\nТеги:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, tag := range tags {
		fmt.Fprintf(w, "  %s\t%d\n", tag, st.Tags[tag])
	}
	_ = w.Flush()
}

func mood(m *int) string {
	if m == nil {
		return "-"
	}
	return strconv.Itoa(*m)
}
