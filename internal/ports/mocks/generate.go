//go:generate mockgen -source=../catalog_api.go    -destination=./mock_catalog_api.go    -package=mocks
//go:generate mockgen -source=../admin_api.go      -destination=./mock_admin_api.go      -package=mocks
//go:generate mockgen -source=../validator.go      -destination=./mock_validator.go      -package=mocks
//go:generate mockgen -source=../response_cache.go -destination=./mock_response_cache.go -package=mocks

package mocks
