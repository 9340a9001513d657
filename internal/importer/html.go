package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/favs/internal/model"
)

// ImportedPlace is one link read from a bookmark file.
type ImportedPlace struct {
	Place   model.Place
	AddedAt time.Time
}

// ImportedFolder groups the places found under one folder heading. Default is
// set for links that sit outside any folder; Name is empty then.
type ImportedFolder struct {
	Name    string
	Default bool
	Places  []ImportedPlace
}

// ParseHTML reads Netscape bookmark HTML. Nested folders are flattened: each
// link belongs to its innermost folder, and headings with the same name are
// merged. The default folder comes first when it holds any links.
func ParseHTML(r io.Reader) ([]ImportedFolder, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	p := &parser{index: map[string]int{}}
	p.walk(doc)

	out := make([]ImportedFolder, 0, len(p.folders)+1)
	if len(p.root.Places) > 0 {
		out = append(out, p.root)
	}
	for _, f := range p.folders {
		out = append(out, *f)
	}
	return out, nil
}

type parser struct {
	root    ImportedFolder
	folders []*ImportedFolder
	index   map[string]int

	stack   []*ImportedFolder // nil entry = root
	pending *ImportedFolder   // pushed on the next DL
	last    *ImportedPlace    // target of a following DD
}

func (p *parser) current() *ImportedFolder {
	if len(p.stack) == 0 || p.stack[len(p.stack)-1] == nil {
		p.root.Default = true
		return &p.root
	}
	return p.stack[len(p.stack)-1]
}

func (p *parser) folder(name string) *ImportedFolder {
	if i, ok := p.index[name]; ok {
		return p.folders[i]
	}
	p.index[name] = len(p.folders)
	f := &ImportedFolder{Name: name}
	p.folders = append(p.folders, f)
	return f
}

func (p *parser) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "h3":
			if name := textContent(n); name != "" {
				p.pending = p.folder(name)
			}
			p.last = nil
			return

		case "a":
			p.link(n)
			return

		case "dd":
			if p.last != nil && p.last.Place.Address == "" {
				p.last.Place.Address = ownText(n)
			}
			p.last = nil

		case "dl":
			pushed := p.pending != nil
			if pushed {
				p.stack = append(p.stack, p.pending)
				p.pending = nil
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				p.walk(c)
			}
			if pushed {
				p.stack = p.stack[:len(p.stack)-1]
			}
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

func (p *parser) link(n *html.Node) {
	href := attr(n, "href")
	id := attr(n, "place_id")
	if id == "" {
		id = href
	}
	if id == "" {
		return
	}

	name := textContent(n)
	if name == "" {
		name = href
	}

	addedAt := time.Now()
	if ts, err := strconv.ParseInt(attr(n, "add_date"), 10, 64); err == nil {
		addedAt = time.Unix(ts, 0)
	}

	folder := p.current()
	folder.Places = append(folder.Places, ImportedPlace{
		Place: model.Place{
			ID:       id,
			Name:     name,
			URL:      href,
			PhotoURL: attr(n, "icon_uri"),
		},
		AddedAt: addedAt,
	})
	p.last = &folder.Places[len(folder.Places)-1]
}

// textContent returns the trimmed text of n and its descendants.
func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// ownText returns the trimmed text directly under n, ignoring nested elements.
func ownText(n *html.Node) string {
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(text.String())
}

// attr returns the value of an attribute, case-insensitive.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
