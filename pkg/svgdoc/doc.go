// Package svgdoc provides analysis and surgery on SVG template documents.
//
// The engine keeps two representations of a document. A parse tree (stdlib
// encoding/xml tokens) is used only for read-only analysis: locating text
// zones and naming-convention containers. The canonical form is the raw
// string, and all mutation happens through precise substring edits located
// by tag scanning. Tree mutation plus re-serialization is deliberately
// avoided: generic serializers relex the whole document and can mangle
// embedded data the engine never looked at.
//
// The package covers three stages of the engine:
//   - Normalize: strip vendor markup cruft and remap non-portable fonts
//   - LocateContainers / LocateTextZones: naming-convention analysis
//   - TightenBounds: recompute the visible region from content bounds
package svgdoc
