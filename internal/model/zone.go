package model

// Zone 算力区域（参考数据，只读）
type Zone struct {
	ID          string `json:"id"`
	Name        string `json:"name"` // red | yellow
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Status      string `json:"status"`
	GPUCount    int    `json:"gpuCount"`
	IsDefault   bool   `json:"isDefault"`
}
