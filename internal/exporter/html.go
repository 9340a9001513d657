package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nikbrunner/favs/internal/model"
)

// DefaultExportPath returns ~/Downloads/favorites-export-YYYY-MM-DD.html.
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("favorites-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders folders and favorites as Netscape bookmark HTML. Each
// user folder becomes an H3 section holding its memberships. Favorites filed
// under no folder are written at the root.
func ExportHTML(folders []model.Folder, favorites []model.Favorite) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Favorites</TITLE>\n")
	b.WriteString("<H1>Favorites</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, folder := range folders {
		if folder.IsDefault {
			continue
		}
		fmt.Fprintf(&b, "    <DT><H3 ADD_DATE=\"%d\">%s</H3>\n", folder.CreatedAt.Unix(), html.EscapeString(folder.Name))
		b.WriteString("    <DL><p>\n")
		writePlaces(&b, membersOf(favorites, folder.ID), 2)
		b.WriteString("    </DL><p>\n")
	}
	writePlaces(&b, membersOf(favorites, ""), 1)

	b.WriteString("</DL><p>\n")
	return b.String()
}

// membersOf returns the favorites filed under folderID, oldest first. An
// empty folderID selects the unfiled ones.
func membersOf(favorites []model.Favorite, folderID string) []model.Favorite {
	var out []model.Favorite
	for _, f := range favorites {
		if folderID == "" && f.FolderID == nil || f.FolderID != nil && *f.FolderID == folderID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func writePlaces(b *strings.Builder, favorites []model.Favorite, indent int) {
	prefix := strings.Repeat("    ", indent)
	for _, f := range favorites {
		p := f.Place
		href := p.URL
		if href == "" {
			href = p.ID
		}
		name := p.Name
		if name == "" {
			name = href
		}
		fmt.Fprintf(b, "%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\" PLACE_ID=\"%s\"",
			prefix,
			html.EscapeString(href),
			f.CreatedAt.Unix(),
			html.EscapeString(f.PlaceID),
		)
		if p.PhotoURL != "" {
			fmt.Fprintf(b, " ICON_URI=\"%s\"", html.EscapeString(p.PhotoURL))
		}
		fmt.Fprintf(b, ">%s</A>\n", html.EscapeString(name))
		if p.Address != "" {
			fmt.Fprintf(b, "%s<DD>%s\n", prefix, html.EscapeString(p.Address))
		}
	}
}
