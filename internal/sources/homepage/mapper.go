package homepage

import (
	"sort"
	"strings"
)

// dashboardIcons is where Homepage itself resolves bare icon names like "jellyfin.png".
const dashboardIcons = "https://cdn.jsdelivr.net/gh/walkxcode/dashboard-icons"

// MapServices flattens services.yaml into entries. Services without href are skipped.
func MapServices(config ServicesConfig) []Entry {
	var entries []Entry
	for _, groupMap := range config {
		for _, group := range sortedKeys(groupMap) {
			for _, serviceMap := range groupMap[group] {
				for _, name := range sortedKeys(serviceMap) {
					props := serviceMap[name]
					if strings.TrimSpace(props.Href) == "" {
						continue
					}
					entries = append(entries, Entry{
						Group:       group,
						Title:       name,
						URL:         strings.TrimSpace(props.Href),
						Description: props.Description,
						Icon:        IconURL(props.Icon),
					})
				}
			}
		}
	}
	return entries
}

// MapBookmarks flattens bookmarks.yaml into entries. Each bookmark holds a single-item list.
func MapBookmarks(config BookmarksConfig) []Entry {
	var entries []Entry
	for _, category := range config {
		for _, group := range sortedKeys(category) {
			for _, bookmarkMap := range category[group] {
				for _, name := range sortedKeys(bookmarkMap) {
					list := bookmarkMap[name]
					if len(list) == 0 || strings.TrimSpace(list[0].Href) == "" {
						continue
					}
					e := list[0]
					entries = append(entries, Entry{
						Group:       group,
						Title:       name,
						URL:         strings.TrimSpace(e.Href),
						Description: e.Description,
						Icon:        IconURL(e.Icon),
					})
				}
			}
		}
	}
	return entries
}

// IconURL turns a Homepage icon reference into an image URL.
// Full URLs pass through; bare dashboard-icons names are resolved against the CDN;
// anything else (mdi-*, si-*, local paths) yields "".
func IconURL(icon string) string {
	icon = strings.TrimSpace(icon)
	lower := strings.ToLower(icon)
	switch {
	case icon == "":
		return ""
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return icon
	case strings.HasPrefix(lower, "mdi-"), strings.HasPrefix(lower, "si-"), strings.Contains(icon, "/"):
		return ""
	}

	for _, ext := range []string{".png", ".svg", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return dashboardIcons + "/" + ext[1:] + "/" + icon
		}
	}
	return dashboardIcons + "/png/" + icon + ".png"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
