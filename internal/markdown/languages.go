package markdown

import "strings"

// languageAliases maps fence info tags to highlighting grammars.
var languageAliases = map[string]string{
	"sh":         "bash",
	"shell":      "bash",
	"zsh":        "bash",
	"bash":       "bash",
	"console":    "bash",
	"ps":         "powershell",
	"ps1":        "powershell",
	"powershell": "powershell",
	"ts":         "typescript",
	"typescript": "typescript",
	"tsx":        "tsx",
	"js":         "javascript",
	"javascript": "javascript",
	"jsx":        "jsx",
	"json":       "json",
	"yml":        "yaml",
	"yaml":       "yaml",
	"cs":         "csharp",
	"c#":         "csharp",
	"csharp":     "csharp",
	"fs":         "fsharp",
	"f#":         "fsharp",
	"fsharp":     "fsharp",
	"html":       "html",
	"xml":        "xml",
	"svelte":     "svelte",
	"vue":        "html",
	"css":        "css",
	"scss":       "scss",
	"md":         "markdown",
	"markdown":   "markdown",
	"sql":        "sql",
	"diff":       "diff",
	"go":         "go",
	"golang":     "go",
	"graphql":    "graphql",
	"gql":        "graphql",
	"docker":     "docker",
	"dockerfile": "docker",
	"py":         "python",
	"python":     "python",
	"java":       "java",
	"rust":       "rust",
	"rs":         "rust",
	"toml":       "toml",
	"ini":        "ini",
}

// plainLanguages are tags that ask for no highlighting at all.
var plainLanguages = map[string]struct{}{
	"":          {},
	"text":      {},
	"txt":       {},
	"plain":     {},
	"plaintext": {},
}

// grammarFor resolves a fence tag. plain is true when the tag explicitly
// asks for unhighlighted output; ok is false for unknown tags.
func grammarFor(tag string) (grammar string, plain, ok bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if _, p := plainLanguages[tag]; p {
		return "", true, true
	}
	grammar, ok = languageAliases[tag]
	return grammar, false, ok
}
