// Package layout assigns pixel positions to the nodes of a process schema.
//
// The engine runs four stages, each usable on its own:
//
//  1. [BuildIndex] turns the node list into an id lookup and an ordered
//     adjacency map built from every node's routing rules.
//  2. [Classify] splits one node's outgoing edges into main flow and branches.
//  3. [Traverse] walks depth-first from the start node and gives every
//     reachable node a grid [Cell] (level, column).
//  4. [Config.Point] and [MapCoordinates] turn cells into pixel positions
//     and write them onto the nodes.
//
// [Plan] runs stages 1-3 plus the point computation without touching the
// document; [Apply] additionally writes the positions.
//
// # Flow classification
//
// For each source node, in edge order:
//
//   - the first known target of a condition node is a branch;
//   - otherwise an end node whose extra contains "error" is a branch;
//   - everything else is main flow.
//
// Targets that name no node are dropped and reported as
// DANGLING_EDGE_REFERENCE warnings. Only the first edge of a condition node
// is taken by the first rule, so a second error-tagged end hanging off the
// same condition stays in the main flow.
//
// # Grid
//
// Main-flow targets sit one level below their source in the same column.
// Branch i of a source sits on the source's level, i+1 columns to its right.
// Each node keeps the first cell it is given: on graphs where paths
// reconverge, a node first reached through a branch stays there even when a
// main-flow path reaches it later. Cycles terminate because no node is
// visited twice.
//
// # Coordinates
//
//	y = BaseY + level*VerticalSpacing
//	x = BaseX + column*HorizontalSpacing (+ CenterOffset for start/end)
//
// Start and end shapes are round and positioned by their center; the offset
// lines them up with rectangular shapes positioned by their top-left corner.
// Nodes the traversal never reaches keep whatever x and y they had.
//
// # Concurrency
//
// The package holds no mutable state. Independent documents can be laid out
// concurrently; a single document must not be laid out from two goroutines.
package layout
