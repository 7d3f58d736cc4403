package storage

// Object key layout for the single service bucket. Keys are stable per
// entity so re-uploads overwrite the previous object.

// PropertyImageKey locates the cover image for a property.
func PropertyImageKey(propertyID string) string {
	return "properties/" + propertyID + "/image"
}

// TenantIDKey locates a tenant's identification document scan.
func TenantIDKey(tenantID string) string {
	return "tenants/" + tenantID + "/id"
}

// TenantProfileKey locates a tenant's profile photo.
func TenantProfileKey(tenantID string) string {
	return "tenants/" + tenantID + "/profile"
}

// ContractKey locates the signed contract for an occupancy.
func ContractKey(occupancyID string) string {
	return "contracts/" + occupancyID
}

// TenantDocumentKey locates an uploaded tenant document by its record id.
func TenantDocumentKey(documentID string) string {
	return "tenant-documents/" + documentID
}
