package gns3

// Project is a GNS3 project (workspace).
type Project struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
}

// Appliance is an entry in the controller's appliance template catalog.
type Appliance struct {
	ApplianceID string `json:"appliance_id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
}

// Node is a node instance within a project.
type Node struct {
	NodeID      string `json:"node_id"`
	Name        string `json:"name"`
	Console     int    `json:"console,omitempty"`
	ConsoleType string `json:"console_type,omitempty"`
	Status      string `json:"status,omitempty"`
	Ports       []Port `json:"ports,omitempty"`
}

// Port is one network port of a node as reported by the controller.
// Ports are listed in interface order; the user-facing interface index
// is the position in this list.
type Port struct {
	Name          string `json:"name,omitempty"`
	ShortName     string `json:"short_name,omitempty"`
	AdapterNumber int    `json:"adapter_number"`
	PortNumber    int    `json:"port_number"`
}

// NodePlacement is the body of a create-node-from-appliance call.
type NodePlacement struct {
	ComputeID string `json:"compute_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// LinkNode is one side of a link.
type LinkNode struct {
	NodeID        string `json:"node_id"`
	AdapterNumber int    `json:"adapter_number"`
	PortNumber    int    `json:"port_number"`
}

// Link is a link between two node ports.
type Link struct {
	LinkID string     `json:"link_id,omitempty"`
	Nodes  []LinkNode `json:"nodes"`
}
