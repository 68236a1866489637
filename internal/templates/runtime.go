package templates

import _ "embed"

// runtimeJS is the browser runtime the emitted templates call into. It
// installs a Handlebars global with template(), registerPartial(), and the
// helper table (escape, truthy, lookup, str, partial).
//
//go:embed runtime.js
var runtimeJS string
