package render

// refAttrs maps HTML tag names to the attributes that can reference other
// archive parts.
var refAttrs = map[string][]string{
	"a":          {"href"},
	"applet":     {"codebase"},
	"area":       {"href"},
	"audio":      {"src"},
	"blockquote": {"cite"},
	"body":       {"background"},
	"button":     {"formaction"},
	"command":    {"icon"},
	"del":        {"cite"},
	"embed":      {"src"},
	"form":       {"action"},
	"frame":      {"longdesc", "src"},
	"head":       {"profile"},
	"html":       {"manifest"},
	"iframe":     {"longdesc", "src"},
	"img":        {"longdesc", "src", "usemap"},
	"input":      {"formaction", "src", "usemap"},
	"ins":        {"cite"},
	"link":       {"href"},
	"object":     {"classid", "codebase", "data", "usemap"},
	"q":          {"cite"},
	"script":     {"src"},
	"source":     {"src"},
	"track":      {"src"},
	"video":      {"poster", "src"},
}
