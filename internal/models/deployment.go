package models

import "time"

type DeploymentState string

const (
	DeploymentStatePending  DeploymentState = "pending"
	DeploymentStateRunning  DeploymentState = "running"
	DeploymentStateDeployed DeploymentState = "deployed"
	DeploymentStateFailed   DeploymentState = "failed"
)

// DeploymentStatus is the outcome of the last function deployment against one endpoint.
type DeploymentStatus struct {
	Endpoint  string
	State     DeploymentState
	Error     string
	UpdatedAt time.Time
}
