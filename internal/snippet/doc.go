// Package snippet expands transclusion markers in Markdown sources.
//
// A line holding `-8<- "path"` is replaced by the referenced content, and a
// marker alone on a line toggles a block whose lines are each a reference.
// References may select a line range (`path:3:9`) or a named section
// (`path:name`) delimited in the target by `-8<- [start: name]` and
// `-8<- [end: name]`. A trailing `!` reads the referenced file as-is even
// when it is a compiled source.
//
// Engine drives expansion with an explicit visited set per top-level call,
// Resolver locates and reads referenced content, and RemoteCache memoizes
// downloaded snippets for the lifetime of one build.
package snippet
