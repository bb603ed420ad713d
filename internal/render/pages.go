package render

import (
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"sentencecards/internal/app"
	"sentencecards/internal/groups"
	"sentencecards/internal/sentences"
)

// PageFile is the output file for a level inside a group directory.
func PageFile(level sentences.Level) string {
	switch level {
	case sentences.LevelIntermediate:
		return "intermediate.html"
	case sentences.LevelAdvanced:
		return "advanced.html"
	}
	return "index.html"
}

// PageData is the input of GroupPage.
type PageData struct {
	Meta
	View app.View
	// Audio maps levels to the recording file next to the page. Levels
	// without an entry get no player.
	Audio map[sentences.Level]string
}

// GroupPage renders the practice page of one group at one level.
func GroupPage(d PageData) *html.Node {
	v := d.View
	m := d.Meta
	m.Title = pageTitle(v.Title, d.Title)
	doc, body := document(m)

	add(body, add(el(atom.Header),
		textEl(atom.A, "← All groups", "href", "../../", "class", "home"),
		textEl(atom.H1, v.Title),
	))
	add(body, levelNav(v))
	add(body, audioSection(d.Audio))

	content := el(atom.Main, "id", "app")
	switch {
	case v.Err != nil:
		add(content, textEl(atom.P, ErrorMessage(v.Err), "class", "error"))
	case v.Empty:
		add(content, textEl(atom.P, MsgEmpty, "class", "empty"))
	default:
		for _, s := range v.Sentences {
			add(content, add(el(atom.Div, "class", "sentence-block"),
				textEl(atom.Div, s.Prompt, "class", "prompt"),
				textEl(atom.Div, s.Chinese, "class", "chinese"),
			))
		}
	}
	add(body, content)
	add(body, pager(v.Prev, v.Next))
	return doc
}

func pageTitle(title, site string) string {
	if site == "" || site == title {
		return title
	}
	return title + " · " + site
}

func levelNav(v app.View) *html.Node {
	nav := el(atom.Nav, "class", "levels")
	for _, l := range sentences.Levels {
		label := l.Title()
		if v.Counts != nil {
			label += " (" + strconv.Itoa(v.Counts[l]) + ")"
		}
		if l == v.Level {
			add(nav, textEl(atom.A, label, "href", PageFile(l), "class", "level current", "aria-current", "page"))
			continue
		}
		add(nav, textEl(atom.A, label, "href", PageFile(l), "class", "level"))
	}
	return nav
}

// audioSection has one player per recording. Recordings never autoplay.
func audioSection(files map[sentences.Level]string) *html.Node {
	if len(files) == 0 {
		return nil
	}
	sec := el(atom.Section, "class", "audio")
	for _, l := range sentences.Levels {
		f, ok := files[l]
		if !ok || !l.HasAudio() {
			continue
		}
		add(sec, add(el(atom.Div, "class", "audio-track", "data-level", string(l)),
			textEl(atom.Span, l.Title()+" audio"),
			add(el(atom.Audio, "controls", "", "preload", "none", "src", f),
				text("Your browser does not support audio playback.")),
		))
	}
	return sec
}

func pager(prev, next *groups.Group) *html.Node {
	if prev == nil && next == nil {
		return nil
	}
	nav := el(atom.Nav, "class", "pager")
	if prev != nil {
		add(nav, textEl(atom.A, "← "+prev.Title, "href", siblingHref(prev.ID), "rel", "prev"))
	}
	if next != nil {
		add(nav, textEl(atom.A, next.Title+" →", "href", siblingHref(next.ID), "rel", "next"))
	}
	return nav
}

// ErrorPage renders a page holding only a message.
func ErrorPage(m Meta, message string) *html.Node {
	doc, body := document(m)
	add(body, add(el(atom.Main, "id", "app"), textEl(atom.P, message, "class", "error")))
	return doc
}

// HomeData is the input of HomePage.
type HomeData struct {
	Meta
	Groups []groups.Group
	// Counts holds per-level record counts by group id. Optional.
	Counts map[string]sentences.Counts
	// Err replaces the group list with MsgNoGroups.
	Err error
}

// HomePage renders the list of groups.
func HomePage(d HomeData) *html.Node {
	doc, body := document(d.Meta)
	add(body, textEl(atom.H1, d.Title))

	list := el(atom.Div, "id", "groups")
	if d.Err != nil {
		add(list, textEl(atom.P, MsgNoGroups, "class", "error"))
	}
	for _, g := range d.Groups {
		card := add(el(atom.Div, "class", "group-card", "id", "group-"+g.ID),
			textEl(atom.H2, g.Title),
			textEl(atom.P, g.Description),
		)
		if c, ok := d.Counts[g.ID]; ok {
			add(card, textEl(atom.P, fmt.Sprintf("%d intermediate · %d advanced",
				c[sentences.LevelIntermediate], c[sentences.LevelAdvanced]), "class", "counts"))
		}
		add(card, textEl(atom.A, MsgOpenPractice, "href", g.Path()))
		add(list, card)
	}
	add(body, list)
	return doc
}

// siblingHref links from one group directory to another.
func siblingHref(id string) string {
	return "../" + url.PathEscape(id) + "/"
}
