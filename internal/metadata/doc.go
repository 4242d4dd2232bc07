// Package metadata writes and reads the YAML sidecar records that describe
// each published asset.
//
// Writer renders a fixed-schema document per uid under the image or file
// metadata directory, with header comments carrying the public URL and the
// site shortcode. Reader scans the image records for uid and format only, to
// drive mirror downloads. LoadRecords decodes whole records with yaml.v3 for
// listing.
package metadata
