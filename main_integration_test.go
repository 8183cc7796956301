//go:build integration

package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	testAppBinary      = "./b2b_test_app"
	testAppPort        = "8089"
	testServiceApiPort = "8091"
	testAppURL         = "http://localhost:" + testAppPort
	testServiceApiURL  = "http://127.0.0.1:" + testServiceApiPort
	testCollection     = "lead_integration"
	startupTimeout     = 15 * time.Second
)

// TestMain builds the binary, runs it in api mode against DATABASE_URL and
// stops it through the service API.
func TestMain(m *testing.M) {
	godotenv.Load()
	if os.Getenv("DATABASE_URL") == "" {
		log.Println("DATABASE_URL not set, skipping integration tests")
		return
	}
	defer func() { _ = os.Remove(testAppBinary) }()

	buildCmd := exec.Command("go", "build", "-o", testAppBinary, ".")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		log.Printf("Failed to build application: %v\nOutput:\n%s", err, string(out))
		os.Exit(1)
	}

	apiCmd := exec.Command(testAppBinary, "-m", "api")
	apiCmd.Env = append(os.Environ(),
		"PORT="+testAppPort,
		"SERVICE_API_PORT="+testServiceApiPort,
		"LEAD_COLLECTION="+testCollection,
		"REDIS_ADDR=",
		"GIN_MODE=release",
	)
	apiCmd.Stdout = os.Stdout
	apiCmd.Stderr = os.Stderr
	if err := apiCmd.Start(); err != nil {
		log.Printf("Failed to start API process: %v", err)
		os.Exit(1)
	}
	defer func() {
		resp, err := http.Post(testServiceApiURL+"/api", "application/json", bytes.NewBufferString(`{"method":"shutdown"}`))
		if err == nil {
			resp.Body.Close()
		} else {
			_ = apiCmd.Process.Signal(syscall.SIGTERM)
		}
		_, _ = apiCmd.Process.Wait()
		dropTestCollection()
	}()

	ready := false
	for start := time.Now(); time.Since(start) < startupTimeout; time.Sleep(200 * time.Millisecond) {
		resp, err := http.Get(testAppURL + "/api/hello")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				ready = true
				break
			}
		}
	}
	if !ready {
		log.Printf("Application failed to start within %v", startupTimeout)
		return
	}

	m.Run()
}

func testDB(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(os.Getenv("DATABASE_URL")))
	if err != nil {
		return nil, nil, err
	}
	name := os.Getenv("DATABASE_NAME")
	if name == "" {
		name = "oxyspa"
	}
	return client, client.Database(name), nil
}

func dropTestCollection() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, database, err := testDB(ctx)
	if err != nil {
		return
	}
	defer client.Disconnect(ctx)
	_ = database.Collection(testCollection).Drop(ctx)
}

func postJSON(t *testing.T, body string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(testAppURL+"/api/leads", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var respBody map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &respBody))
	return resp.StatusCode, respBody
}

func TestIntegration_CreateLead_Persists(t *testing.T) {
	status, respBody := postJSON(t, `{"company_name":"Acme Spas","contact_name":"Jo Lee","email":"jo@acme.test","spa_count":12}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", respBody["status"])

	id, _ := respBody["id"].(string)
	oid, err := primitive.ObjectIDFromHex(id)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, database, err := testDB(ctx)
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	var doc bson.M
	require.NoError(t, database.Collection(testCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc))
	assert.Equal(t, "Acme Spas", doc["company_name"])
	assert.Equal(t, int32(12), doc["spa_count"])
	assert.Equal(t, true, doc["consent"])
	assert.Equal(t, "landing", doc["source"])
	assert.Nil(t, doc["phone"])
}

func TestIntegration_CreateLead_Invalid(t *testing.T) {
	status, respBody := postJSON(t, `{"company_name":"A","contact_name":"Jo Lee","email":"jo@acme.test"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Validation failed", respBody["error"])
}

func TestIntegration_Diagnostics(t *testing.T) {
	resp, err := http.Get(testAppURL + "/test")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var respBody map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&respBody))
	assert.Equal(t, "Running", respBody["backend"])
	assert.Equal(t, "Connected & Working", respBody["database"])
}
