package wire

// Filesystem paths shared by the firmware and executive processes, relative
// to the firmware's working directory. Matches the original image's layout
// so supervision tooling and the checkpoint file need no translation.
const (
	// CommandSocketPath is the Unix-domain socket the firmware listens on
	// for control requests from the executive's ground-proxy and from the
	// executive itself.
	CommandSocketPath = "./rad_exec_cmd.socket"
	// ServiceSocketPath is the Unix-domain socket the executive listens on
	// for requests the firmware forwards to the orbital simulator.
	ServiceSocketPath = "./rad_exec_svc.socket"
	// CheckpointPath is where the executive persists the firmware's
	// serialized protected state between restarts.
	CheckpointPath = "./rad.chkpt"
)
