// Package repair patches an Expo project's app.json and package.json so the
// development server accepts connections through a tunnel and from
// external origins.
//
// Every patch is a sequence of steps. A step first checks whether the
// document is already correct and only then edits it, so running a repair
// twice produces no second write and an empty change log.
//
// Files are only rewritten when the edited document differs semantically
// from the original (compared in RFC 8785 canonical form). Before each
// write the original is copied to "<path>.backup.<epoch-millis>".
package repair
