// Package assets manages cover templates on disk and the starter template
// embedded in the binary.
//
// # Templates Directory
//
// Templates are markdown files below a single base directory and are
// identified by their path relative to it:
//
//	{templatesDir}/
//	├── default-cover.md
//	├── images/
//	│   └── logo.png          # referenced as $images-basepath$images/logo.png
//	└── journals/
//	    └── article-cover.md  # name: journals/article-cover.md
//
// # Security
//
// TemplateDir resolves symlinks and verifies that every resolved template
// stays within the base directory.
package assets
