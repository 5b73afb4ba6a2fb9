// Package nav folds decoded NMEA sentences into a single navigation snapshot.
//
// Each present field overwrites the matching snapshot member and absent
// fields leave it untouched. Multi-page GSV groups are reassembled per
// constellation and published only once complete. A Navigator is not safe for
// concurrent use; callers serialize access.
package nav
