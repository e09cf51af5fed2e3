// Large Journal File Generator
//
// This tool generates a large quantity journal for performance testing and
// profiling. It creates realistic entries with quantities, prices, memos and
// operators to stress-test the parser and ledger.
//
// Usage:
//
//	go run main.go > large.journal
//	go run main.go 20000000 > large.journal  # Specify target size in bytes
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"
)

const (
	defaultTargetSize = 10 * 1024 * 1024 // 10MB
)

var (
	stockAccounts = []string{"商品", "材料", "貯蔵品"}

	expenseAccounts = []string{
		"仕入", "旅費交通費", "通信費", "消耗品費", "水道光熱費",
		"地代家賃", "支払手数料", "雑費",
	}

	incomeAccounts = []string{"売上", "雑収入"}

	moneyAccounts = []string{"現金", "預金", "売掛金", "買掛金"}

	items = []string{
		"Tシャツ", "ジーンズ", "スニーカー", "帽子", "バッグ",
		"ベルト", "ソックス", "ジャケット",
	}

	partners = []string{
		"山田商店", "鈴木商店", "田中物産", "佐藤衣料", "高橋繊維",
		"渡辺商会", "伊藤洋品店",
	}

	persons = []string{"北村", "南", "東野", "西田"}

	remarks = []string{
		"夏物仕入", "冬物仕入", "店頭売上", "通販売上", "展示会",
		"月次精算", "現金回収", "掛払い",
	}

	departments = []string{"本店", "大阪", "名古屋", "通販"}

	units = []string{"個", "枚", "箱", "足"}
)

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		if size, err := strconv.Atoi(os.Args[1]); err == nil {
			targetSize = size
		}
	}

	writeHeader()

	startDate := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	currentDate := startDate

	bytesWritten := 0
	entryCount := 0

	for bytesWritten < targetSize {
		var entry string
		switch rand.Intn(10) {
		case 0, 1, 2: // 30% - purchase into stock with quantity and price
			entry = generatePurchase(currentDate)
		case 3, 4, 5: // 30% - sale with auto costing
			entry = generateSale(currentDate)
		case 6, 7: // 20% - plain expense
			entry = generateExpense(currentDate)
		case 8: // 10% - entry with memos and person in charge
			entry = generateAnnotated(currentDate)
		case 9: // 10% - entry with a balancing operator
			entry = generateWithOperator(currentDate)
		}

		fmt.Print(entry)
		bytesWritten += len(entry)
		entryCount++

		// Advance date by 0-3 days
		currentDate = currentDate.AddDate(0, 0, rand.Intn(4))
	}

	fmt.Fprintf(os.Stderr, "\nGenerated %d bytes with %d entries\n", bytesWritten, entryCount)
}

func writeHeader() {
	fmt.Println("Large journal for performance testing")
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println()

	// Opening entry seeds the stock accounts so sales can draw on them.
	fmt.Println("<<")
	fmt.Println("2020-01-01 &KIND::OPENING")
	for _, account := range stockAccounts {
		for _, item := range items {
			fmt.Printf(" Dr %s#%s *1000%s 100000円\n", account, item, units[0])
		}
	}
	fmt.Println(" Dr 現金 5000000円")
	fmt.Println(" Cr 元入金 ?D")
	fmt.Println(">>")
	fmt.Println()
}

func pick(list []string) string {
	return list[rand.Intn(len(list))]
}

func generatePurchase(date time.Time) string {
	dateStr := date.Format("2006-01-02")
	account := pick(stockAccounts)
	item := pick(items)
	qty := rand.Intn(50) + 1
	price := (rand.Intn(50) + 1) * 10
	amount := qty * price

	return fmt.Sprintf(`<<
%s $%s
 Dr %s#%s @%d *%d%s %d円
 Cr %s %d円
>>

`, dateStr, pick(partners), account, item, price, qty, pick(units), amount, pick(moneyAccounts), amount)
}

func generateSale(date time.Time) string {
	dateStr := date.Format("2006-01-02")
	account := pick(stockAccounts)
	item := pick(items)
	qty := rand.Intn(20) + 1
	price := (rand.Intn(100) + 10) * 10
	amount := qty * price

	return fmt.Sprintf(`<<
%s $%s ##%s
 Dr %s %d円
 Cr %s %d円
 Dr 仕入 ?E
 Cr %s#%s *%d%s ?
>>

`, dateStr, pick(partners), pick(remarks), pick(moneyAccounts), amount, pick(incomeAccounts), amount, account, item, qty, pick(units))
}

func generateExpense(date time.Time) string {
	dateStr := date.Format("2006-01-02")
	amount := (rand.Intn(500) + 1) * 10

	return fmt.Sprintf(`<<
%s
 Dr %s %d円
 Cr %s %d円
>>

`, dateStr, pick(expenseAccounts), amount, pick(moneyAccounts), amount)
}

func generateAnnotated(date time.Time) string {
	dateStr := date.Format("2006-01-02")
	amount := (rand.Intn(300) + 1) * 100

	return fmt.Sprintf(`<<
%s $%s >%s &DEPT::%s
 Dr %s %d円 ##%s
 Cr %s %d円
>>

`, dateStr, pick(partners), pick(persons), pick(departments), pick(expenseAccounts), amount, pick(remarks), pick(moneyAccounts), amount)
}

func generateWithOperator(date time.Time) string {
	dateStr := date.Format("2006-01-02")
	amount := (rand.Intn(400) + 1) * 100
	tax := amount / 10

	return fmt.Sprintf(`<<
%s $%s
 Dr %s %d円
 Dr 仮払消費税 %d円
 Cr %s ?D
>>

`, dateStr, pick(partners), pick(expenseAccounts), amount, tax, pick(moneyAccounts))
}
