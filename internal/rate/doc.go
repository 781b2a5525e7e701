// Package rate provides Redis-backed fixed-window counters for the abuse
// sensitive auth endpoints.
//
// # Window semantics
//
// Fixed-window counters: INCR + EXPIRE on first hit. Key prefixes:
//   - rl:l:  login per-email
//   - rl:li: login per-IP
//   - rl:a:  activation code attempts per-email
//   - rl:r:  refresh per-user
//   - rl:g:  registration per-IP
package rate
