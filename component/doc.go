// Package component defines lifecycle-managed application parts.
//
// A Component starts, stops and reports health; the Registry starts
// components in registration order and stops them in reverse. bootstrap
// registers the composed exports, the telemetry pipeline and the
// diagnostics server as components.
//
// Optional interfaces:
//
//   - Describable: startup summary description
//   - RouteProvider: HTTP routes for the startup summary
package component
