// Package compiler lowers a parsed model.Document into a plan.Plan.
//
// Scopes are emitted depth-first from the root: every group a scope
// instantiates is emitted in full before the scope itself, and groups that
// are never instantiated follow the root in declaration order. Inside a scope
// the order is CreateNode by LocalIndex, PairZone and Connect in declaration
// order, then ApplyValue per node by LocalIndex and per field by first
// declaration. Each (node, field) yields exactly one ApplyValue: the user
// override when there is one, otherwise the authored default.
//
// Pass-through nodes (reroutes and frames) never reach the plan. Links that
// leave them are rewritten to start at the real upstream socket.
package compiler
