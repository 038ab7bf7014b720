// Package ipk extracts the contents of opkg and dpkg style software packages.
//
// A package file is an uncompressed ar archive whose members are themselves
// compressed tar archives: control.tar.gz carries the package metadata and
// data.tar.gz carries the payload that is installed to the filesystem. The
// inner archive is read directly out of the outer archive member, so at no
// point is a member materialized on disk or in memory.
//
// Extraction is offered at three granularities: a single named entry to an
// [io.Writer], the list of entry pathnames to an [io.Writer], and the full
// archive to a [Target] such as [TargetDisk] or [TargetMemory].
//
// Entry pathnames are used as delivered by the archive. Leading "./" and "/"
// are stripped and the result is appended to the destination root, but no
// further sanitization takes place; callers extract only packages they
// trust, or extract to an isolated [Target].
//
// Configuration is done using the [Config], which can be used to set the
// read buffer size, the logger, the telemetry hook, and the maximum input
// size. The collection of [TelemetryData] is done once per operation.
package ipk
