// Package gltf holds the in-memory document model for 3-D assets: the
// structural scene description (nodes, meshes, primitives, accessors,
// buffer views, materials, textures, images, samplers) plus one
// contiguous binary payload.
//
// Entities live in flat, owning sequences on Root and address one
// another exclusively through integer index fields, so a Document has
// a single clear owner for everything it contains. Graph validation
// (Validate) guarantees every such index is in range and every buffer
// view lies inside the payload.
//
// The package also implements the variant-mapping extension block: a
// root-level ordered tag list and per-primitive tag-to-material
// override lists, which together let a runtime switch materials
// without reloading geometry.
package gltf
