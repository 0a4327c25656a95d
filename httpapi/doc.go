// Package httpapi serves the library over HTTP with JSON responses.
//
// Routes:
//
//	GET  /healthz
//	GET  /stats
//	GET  /books?title=
//	GET  /books/{id}
//	GET  /books/isbn/{isbn}
//	GET  /members?name=
//	GET  /members/{id}
//	GET  /loans/active
//	GET  /loans/overdue
//	POST /loans                  {"member_id": 1, "book_id": 2}
//	GET  /loans/{id}/fine
//	POST /loans/{id}/return
//	GET  /reports/{kind}?format=pdf|json
//
// Every request passes a token bucket rate limiter shared by the whole server.
// Errors are answered as {"error": {"code": "...", "message": "..."}}.
package httpapi
