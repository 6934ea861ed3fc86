package edm

// Property types referenced by search constraints and dashboard counts.
var (
	PropTimestamp   = MustFQN("ol.datelogged")
	PropCoordinate  = MustFQN("ol.location")
	PropPlate       = MustFQN("vehicle.licensenumber")
	PropAgencyName  = MustFQN("publicsafety.agencyname")
	PropCameraID    = MustFQN("ol.resourceid")
	PropMake        = MustFQN("vehicle.make")
	PropModel       = MustFQN("vehicle.model")
	PropColor       = MustFQN("vehicle.color")
	PropAccessories = MustFQN("vehicle.accessories")
	PropStyle       = MustFQN("vehicle.style")
	PropLabel       = MustFQN("ol.label")
	PropID          = MustFQN("ol.id")
	PropName        = MustFQN("ol.name")
	PropDescription = MustFQN("ol.description")
)
