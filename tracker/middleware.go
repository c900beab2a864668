// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from the Compose2/Compose3/... fold in the teacher package's
// compose.go, generalized from chaining Func[A,B] pipeline stages to
// folding AroundMiddleware backend decorators.
//

package tracker

// ComposeMiddleware folds a list of [AroundMiddleware] into one,
// applying them outside-in: ComposeMiddleware(a, b)(inner) is
// equivalent to a(b(inner)), so a request flows through a first, then
// b, then inner. An empty list returns the identity middleware.
func ComposeMiddleware(mw ...AroundMiddleware) AroundMiddleware {
	switch len(mw) {
	case 0:
		return func(inner TrackerBackend) TrackerBackend { return inner }
	case 1:
		return mw[0]
	default:
		head, tail := mw[0], mw[1:]
		rest := ComposeMiddleware(tail...)
		return func(inner TrackerBackend) TrackerBackend {
			return head(rest(inner))
		}
	}
}
