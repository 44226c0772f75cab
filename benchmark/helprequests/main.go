package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	wardGrpc "liyu1981.xyz/ward-alert-service/pkg/grpc"
	"liyu1981.xyz/ward-alert-service/pkg/hospital"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	"liyu1981.xyz/ward-alert-service/pkg/session"
)

var maxBeds int = 200
var bedsPerNurse int = 10
var httpHostPort string = "127.0.0.1:1080"
var grpcHostPort string = "127.0.0.1:10801"

var httpClient = resty.New().SetBaseURL("http://" + httpHostPort).SetTimeout(10 * time.Second)
var grpcClient wardGrpc.WardServiceClient

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Notice  string `json:"notice"`
	Error   any    `json:"error"`
}

type bedSetup struct {
	bedID      string
	nurseID    string
	token      string
	nurseToken string
}

func flipCoin() bool {
	rndMu.Lock()
	defer rndMu.Unlock()
	return rnd.Int31n(100000)%2 == 0
}

func post[T any](path, token string, body any) T {
	var out envelope[T]
	req := httpClient.R().SetBody(body).SetResult(&out).SetError(&out)
	if token != "" {
		req.SetAuthToken(token)
	}
	resp, err := req.Post(path)
	if err != nil {
		log.Fatalf("POST %s: %v", path, err)
	}
	if !out.Success {
		log.Fatalf("POST %s: %d %v", path, resp.StatusCode(), out.Error)
	}
	return out.Data
}

func put[T any](path, token string, body any) T {
	var out envelope[T]
	resp, err := httpClient.R().SetAuthToken(token).SetBody(body).SetResult(&out).SetError(&out).Put(path)
	if err != nil || !out.Success {
		log.Fatalf("PUT %s: %v %d %v", path, err, resp.StatusCode(), out.Error)
	}
	return out.Data
}

func withToken(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func main() {
	resp, err := httpClient.R().Get("/healthz")
	if err != nil || resp.StatusCode() != 200 {
		log.Fatal("HTTP server not available: ", err)
	}
	fmt.Printf("http server verified\n")

	conn, err := grpc.NewClient(grpcHostPort, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal("Failed to connect to gRPC server:", err)
	}
	defer conn.Close()
	grpcClient = wardGrpc.NewWardServiceClient(conn)
	fmt.Printf("gRPC client connected\n")

	root := post[session.Session]("/login", "", map[string]string{
		"role":     string(models.RoleSuperadmin),
		"username": common.EnvOr(common.EnvKeyWardSuperadminUser, "admin"),
		"password": os.Getenv(common.EnvKeyWardSuperadminPass),
	})
	wardUser := "bench-" + uuid.NewString()[:8]
	ward := post[models.Ward]("/wards", root.Token, map[string]string{
		"name": "Benchmark " + wardUser, "username": wardUser, "password": "bench",
	})
	admin := post[session.Session]("/login", "", map[string]string{
		"role": string(models.RoleWardAdmin), "username": wardUser, "password": "bench",
	})
	fmt.Printf("ward %v created\n", ward.ID)

	var startTime time.Time
	var usedTime time.Duration

	beds := make([]bedSetup, maxBeds)
	var nurseID string
	startTime = time.Now()
	for i := range maxBeds {
		if i%bedsPerNurse == 0 {
			nurse := post[models.Nurse]("/nurses", admin.Token, map[string]string{"name": fmt.Sprintf("Nurse %d", i/bedsPerNurse)})
			nurseID = nurse.ID
		}
		bed := post[models.Bed]("/beds", admin.Token, map[string]string{"label": fmt.Sprintf("Bed %d", i)})
		put[models.Bed]("/beds/"+bed.ID+"/nurse", admin.Token, map[string]string{"nurse_id": nurseID})
		admission := post[hospital.Admission]("/patients", admin.Token, map[string]string{
			"bed_id": bed.ID, "name": fmt.Sprintf("Patient %d", i),
		})
		beds[i] = bedSetup{bedID: bed.ID, nurseID: nurseID, token: admission.Token}
		fmt.Printf("\rprepared bed %v", i)
	}
	// one login per nurse: a second login would end the first session
	nurseTokens := map[string]string{}
	for i := range beds {
		id := beds[i].nurseID
		if _, ok := nurseTokens[id]; !ok {
			nurseTokens[id] = post[session.Session]("/login", "", map[string]string{"role": string(models.RoleNurse), "user_id": id}).Token
		}
		beds[i].nurseToken = nurseTokens[id]
	}
	usedTime = time.Since(startTime)
	fmt.Printf("\rprepared %v beds: used time=%v seconds\n", maxBeds, usedTime.Seconds())

	startTime = time.Now()
	wg := sync.WaitGroup{}
	for i := range maxBeds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			helpRoundTrip(beds[i])
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\n\rdid help round trips for %v beds: used time=%v seconds, throughput=%v action/second\n",
		maxBeds, usedTime.Seconds(), float64(maxBeds*4)/usedTime.Seconds(),
	)
}

// helpRoundTrip is the scenario of one bed: the patient scans the QR code and
// asks for help, the nurse lists the pending alerts and confirms.
func helpRoundTrip(b bedSetup) {
	var patientToken string
	if flipCoin() {
		var out envelope[struct {
			Valid   bool            `json:"valid"`
			Session session.Session `json:"session"`
		}]
		q := url.Values{"bed_id": {b.bedID}, "token": {b.token}}
		if _, err := httpClient.R().SetResult(&out).Get("/validate-token?" + q.Encode()); err != nil || !out.Data.Valid {
			fmt.Printf("\nvalidate-token failed for bed %v: %v\n", b.bedID, err)
			return
		}
		patientToken = out.Data.Session.Token
	} else {
		resp, err := grpcClient.ValidateToken(context.Background(), &wardGrpc.ValidateTokenRequest{BedId: b.bedID, Token: b.token})
		if err != nil || !resp.Valid {
			fmt.Printf("\nvalidate-token failed for bed %v: %v\n", b.bedID, err)
			return
		}
		patientToken = resp.SessionToken
	}

	var alertID string
	if flipCoin() {
		receipt := post[hospital.AlertReceipt]("/alerts", patientToken, nil)
		alertID = receipt.Alert.ID
	} else {
		resp, err := grpcClient.CreateAlert(withToken(patientToken), &wardGrpc.CreateAlertRequest{})
		if err != nil || !resp.Status.Success {
			fmt.Printf("\ncreate alert failed for bed %v: %v %v\n", b.bedID, err, resp)
			return
		}
		alertID = resp.Receipt.Alert.ID
	}

	pending, err := grpcClient.ListPending(withToken(b.nurseToken), &wardGrpc.ListPendingRequest{BedIds: []string{b.bedID}})
	if err != nil || !pending.Status.Success {
		fmt.Printf("\nlist pending failed for bed %v: %v\n", b.bedID, err)
	}

	resp, err := grpcClient.ConfirmAlert(withToken(b.nurseToken), &wardGrpc.ResolveAlertRequest{AlertId: alertID})
	if err != nil || !resp.Status.Success {
		fmt.Printf("\nconfirm failed for alert %v: %v %v\n", alertID, err, resp)
	}
	fmt.Printf("\rconfirmed help request of bed %v", b.bedID)
}
