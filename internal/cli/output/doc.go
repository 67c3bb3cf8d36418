// Package output renders foteam-sessctl results as a table, JSON or YAML.
//
// Tables are derived from struct fields: the json tag names the column
// and a `table:"wide"` tag hides the column unless --wide is given.
package output
