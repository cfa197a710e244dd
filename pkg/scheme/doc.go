// Package scheme reads and writes process schema documents.
//
// A process schema is a JSON document whose scheme.nodes array describes a
// flowchart: one start node, end nodes, condition nodes and normal nodes,
// linked through each node's condition.logics routing rules.
//
//	{
//	  "scheme": {
//	    "nodes": [
//	      {"id": "s", "obj_type": 1, "condition": {"logics": [{"to_node_id": "a"}]}},
//	      {"id": "a", "obj_type": 3, "condition": {"logics": [{"to_node_id": "e"}]}},
//	      {"id": "e", "obj_type": 2, "extra": "{\"icon\":\"success\"}"}
//	    ]
//	  }
//	}
//
// # Node kinds
//
// obj_type selects the node kind: 0 condition, 1 start, 2 end, 3 normal.
// Any other value decodes as [KindUnknown], which layout treats like a
// normal node.
//
// # Round trips
//
// [Document] keeps the decoded JSON tree and hands out [Node] views over it.
// [Node.SetPosition] writes x and y straight into the tree, so every field the
// package does not understand survives a [ReadFile]/[WriteFile] round trip.
// Numbers are kept as json.Number and re-encoded verbatim. Object keys are
// written in sorted order.
//
// # Errors
//
// [ReadFile] returns INPUT_NOT_FOUND for unreadable paths and
// [Parse]/[Decode] return MALFORMED_SCHEMA when the document is not JSON or
// does not match the expected shape. Shape checks use an embedded JSON
// Schema (draft 2020-12).
package scheme
