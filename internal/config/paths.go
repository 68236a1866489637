package config

import "path/filepath"

// SourceDirs holds the per-category source directories under src/.
type SourceDirs struct {
	Public    string // src/public
	Pages     string // src/public/pages
	Partials  string // src/public/partials
	Templates string // src/public/templates
	CSS       string // src/assets/css
	SCSS      string // src/assets/scss
	JS        string // src/assets/js
	Images    string // src/assets/images
	Fonts     string // src/assets/fonts
}

// BuildDirs holds the destination directories under build/.
type BuildDirs struct {
	Base   string // build
	CSS    string // build/assets/css
	JS     string // build/assets/js
	Images string // build/assets/images
	Fonts  string // build/assets/fonts
}

// Dirs is the directory map for one project. Each transformer reads only
// from its declared source leaf and writes only to its declared build leaf.
// Computed once at startup and treated as read-only afterwards.
type Dirs struct {
	Root  string
	Src   SourceDirs
	Build BuildDirs
}

// DefaultDirs computes the directory map for a project root. Pure; no
// filesystem access.
func DefaultDirs(root string) Dirs {
	src := filepath.Join(root, "src")
	assets := filepath.Join(src, "assets")
	public := filepath.Join(src, "public")
	build := filepath.Join(root, "build")

	return Dirs{
		Root: root,
		Src: SourceDirs{
			Public:    public,
			Pages:     filepath.Join(public, "pages"),
			Partials:  filepath.Join(public, "partials"),
			Templates: filepath.Join(public, "templates"),
			CSS:       filepath.Join(assets, "css"),
			SCSS:      filepath.Join(assets, "scss"),
			JS:        filepath.Join(assets, "js"),
			Images:    filepath.Join(assets, "images"),
			Fonts:     filepath.Join(assets, "fonts"),
		},
		Build: BuildDirs{
			Base:   build,
			CSS:    filepath.Join(build, "assets", "css"),
			JS:     filepath.Join(build, "assets", "js"),
			Images: filepath.Join(build, "assets", "images"),
			Fonts:  filepath.Join(build, "assets", "fonts"),
		},
	}
}
