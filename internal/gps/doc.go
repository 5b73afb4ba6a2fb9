// Package gps ingests NMEA 0183 from a receiver and keeps the merged fix.
//
// Sources:
// - serial: a USB/UART receiver, with device and baud auto-detection
// - gpsd: raw NMEA passed through by gpsd (?WATCH nmea mode)
// - tcp: any newline-delimited NMEA stream (multiplexers, network receivers)
// - file: a capture log replayed with its original timing
//
// Every line goes through Service.HandleLine, which decodes it, folds it into
// a nav.Navigator and publishes a JSON friendly Snapshot.
package gps
