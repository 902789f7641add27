// Package domain defines the core domain types for the Qompath scene editor.
//
// This package contains the fundamental entities that make up a scene
// composition: typed nodes placed on a canvas, directed edges between them,
// and the viewport the canvas is displayed through.
//
// # Core Types
//
// Node is a positioned element of the composition. Its payload is a closed
// variant (NodeData) over SphereData, BoxData, LightData and RenderData; the
// variant itself is the node's type tag, so every consumer dispatches with an
// exhaustive type switch instead of comparing type strings.
//
// Edge is a directed connection from a source node to a target node,
// optionally tagged with the target port it plugs into ("geometry-in" or
// "light-in").
//
// Graph is the complete composition: nodes, edges and the optional viewport.
// It is also the shape of the exported document.
//
// # Derived Data
//
// RenderData.GeometryIDs and RenderData.LightIDs are a materialized view of
// the edges pointing into a Render node. They are maintained by the store
// package and are never authored directly.
//
// # Design Principles
//
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
// - Wire names live at the JSON boundary only
package domain
