package smarttable

// Version is the release of the module. Builds override it with
// -ldflags "-X github.com/smart-table/smart-table-server.Version=...".
var Version = "0.3.0"
