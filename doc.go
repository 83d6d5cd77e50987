// Package bcontent provides request-time content handlers that compose a response body as an
// ordered chain of segments.
//
// # Overview
//
// A content handler decides, for one parsed request, the response status, content type and
// content length, and builds the body as a [Chain] of [Segment] values. A segment is either
// backed by memory or by a region of a resolved file. The handler never writes to the network
// itself: it hands the descriptor to a [HeaderTransmitter] and the chain to a
// [BodyTransmitter], both provided by the host.
//
// A minimal example:
//
//	mux := bcontent.NewServeMux()
//	if err := mux.Configure("GET /hello", "content_text"); err != nil {
//	    return err
//	}
//	if err := mux.Configure("/index", "content_file", "/srv/www/index.html"); err != nil {
//	    return err
//	}
//	http.ListenAndServe(":8080", mux)
//
// # Modes
//
// The [Composer] supports three modes, selected by [Mode]:
//
//   - [ModeStaticText]: a fixed text; the content length is its byte length
//   - [ModeFile]: the whole file; the content length is the file size
//   - [ModeFileTrailer]: the whole file followed by a fixed trailer text
//
// All modes serve "text/plain". The content length is final before any byte is transmitted
// and always equals the sum of the chain's segment lengths.
//
// # Request Lifecycle
//
// [ContentHandler] moves every request through the states of [State]:
//
//	start → method_checked → body_discarded → composed → header_sent → body_sent
//
// Any failure moves it to aborted. Only GET and HEAD are accepted. HEAD requests stop after
// the header was sent; no chain is built for them.
//
// # Error Handling
//
// Errors are marked with a kind ([ErrNotFound], [ErrResourceUnavailable], ...) and carry an
// HTTP status [Code] through [*Error]:
//
//   - a file that cannot be opened is [CodeNotFound]
//   - a file that cannot be stat'ed, is not regular, or a memory segment over the builder's
//     limit is [CodeInternalServerError]
//   - a method other than GET and HEAD is [CodeMethodNotAllowed]
//
// Use [StatusOf] to turn any error into an http status and errors.Is to classify it.
//
// # Directives
//
// A [Directive] binds a configuration token to a content handler within a [Scope]. The
// built-in [ContentModule] provides content_text, content_file and content_file_trailer.
// Each accepts zero or one argument. Registering a directive into a scope slot that is already
// populated is a no-op:
//
//	scope := bcontent.NewScope("server").Child("/files")
//	err := bcontent.Register(scope, bcontent.FileDirective("my_file"), "/srv/index.html")
//
// # Modules
//
// A [Module] contributes directives. Lifecycle hooks are optional interfaces: implement
// [Starter] or [Stopper] only when needed. [ServeMux.Start] and [ServeMux.Stop] run them.
//
// # Converting to Standard Library
//
// [ToStd] turns any [Handler] into an http.Handler. It adapts the request, writes headers
// from the descriptor and copies segments into the response, releasing file resources when it
// is done.
package bcontent
