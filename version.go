package podium

// Version is the library release identifier.
const Version = "0.3.0"
