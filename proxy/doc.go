// Package proxy provides host-side proxies for common resource families.
//
// Each proxy embeds handleguard.Guard, takes one handle from a Source and
// gives it back either on Close or, if the proxy is simply dropped, after
// the garbage collector reclaims it. Any *resource.Table or *engine.Family
// can act as a Source.
package proxy
