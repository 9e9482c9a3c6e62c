// Package preview serves a markup template bound to a reactive store.
//
// A Host confines its runtime to an Executor goroutine. HTTP handlers and
// websocket clients write store keys through the executor; the template's
// live binding re-renders and the Hub pushes the new HTML to every client.
package preview
