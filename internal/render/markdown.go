package render

import (
	"errors"
	"fmt"
	"strings"

	"sentencecards/internal/app"
	"sentencecards/internal/sentences"
)

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`",
	"[", `\[`, "]", `\]`, "#", `\#`, "<", `\<`,
)

// ErrorMessage returns the message shown in place of content for err.
func ErrorMessage(err error) string {
	if errors.Is(err, app.ErrMissingGroupID) {
		return MsgMissingGroup
	}
	return MsgLoadError
}

// Markdown renders a group view for the terminal preview.
func Markdown(v app.View) string {
	var b strings.Builder
	if v.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", mdEscaper.Replace(v.Title))
	}

	levels := make([]string, 0, len(sentences.Levels))
	for _, l := range sentences.Levels {
		label := l.Title()
		if v.Counts != nil {
			label = fmt.Sprintf("%s (%d)", label, v.Counts[l])
		}
		if l == v.Level {
			label = "**" + label + "**"
		}
		levels = append(levels, label)
	}
	b.WriteString(strings.Join(levels, " · "))
	b.WriteString("\n\n")

	switch {
	case v.Err != nil:
		fmt.Fprintf(&b, "> %s\n>\n> `%v`\n", ErrorMessage(v.Err), v.Err)
	case v.Loading:
		b.WriteString("_Loading..._\n")
	case v.Empty:
		fmt.Fprintf(&b, "_%s_\n", MsgEmpty)
	default:
		for i, s := range v.Sentences {
			if i > 0 {
				b.WriteString("\n---\n\n")
			}
			fmt.Fprintf(&b, "%d. %s\n\n   **%s**\n", i+1,
				mdEscaper.Replace(s.Prompt), mdEscaper.Replace(s.Chinese))
		}
	}

	if v.Prev != nil || v.Next != nil {
		b.WriteString("\n")
		if v.Prev != nil {
			fmt.Fprintf(&b, "← %s", mdEscaper.Replace(v.Prev.Title))
		}
		if v.Prev != nil && v.Next != nil {
			b.WriteString(" | ")
		}
		if v.Next != nil {
			fmt.Fprintf(&b, "%s →", mdEscaper.Replace(v.Next.Title))
		}
		b.WriteString("\n")
	}
	return b.String()
}
