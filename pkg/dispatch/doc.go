// Package dispatch turns URL changes into view change notifications.
//
// A Dispatcher owns a route.Table, the single current-view cell, the
// navigation history, and a registry of preload effects. Every navigation,
// whether it arrives as a raw URL (Navigate), a named view (NavigateTo),
// or a history movement (Back/Forward), follows the same path:
//
//  1. Canonicalize the target (urlpath.Canonicalize). A changed path
//     forces a history replace so clients do not accumulate duplicates.
//  2. Match against the table. Matching is total: unmatched URLs resolve
//     to the catch-all route, never to an error.
//  3. Run the middleware chain (metrics, tracing).
//  4. Update the current view and history, then emit exactly one
//     ViewChange to every subscriber, in order.
//  5. If the view has a registered preload effect, trigger it exactly
//     once, asynchronously. Effect completion is unordered with respect
//     to later navigations; results land in a per-dispatcher TTL/LRU
//     cache keyed by canonical URL.
//
// Navigations are serialized by the dispatcher. Subscribers are invoked
// synchronously and must not call back into the dispatcher from the
// notification; defer re-entrant navigation to a goroutine.
package dispatch
